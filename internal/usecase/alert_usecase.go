package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/satelink/econledger/internal/domain"
)

const alertPersistTimeout = 5 * time.Second

// AlertRule is the window and threshold of one anomaly counter.
type AlertRule struct {
	Window    time.Duration
	Threshold int
}

// AlertConfig configures the anomaly counters.
type AlertConfig struct {
	IPHashSalt  string
	RateLimit   AlertRule
	AuthFailure AlertRule
	NodeFailure AlertRule
}

// DefaultAlertConfig returns the production thresholds.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		RateLimit:   AlertRule{Window: 5 * time.Minute, Threshold: 20},
		AuthFailure: AlertRule{Window: 5 * time.Minute, Threshold: 10},
		NodeFailure: AlertRule{Window: 5 * time.Minute, Threshold: 15},
	}
}

// AlertUseCase turns repeated rate-limit hits, auth failures and node
// failures into security alerts. Recording never fails the caller: alerts
// are persisted in the background and persistence errors are only logged.
type AlertUseCase struct {
	alertRepo AlertRepository
	rateLimit *WindowCounter
	auth      *WindowCounter
	node      *WindowCounter
	metrics   AlertMetrics
	logger    zerolog.Logger
	now       func() time.Time
	salt      string
	wg        sync.WaitGroup
}

// AlertOption configures an AlertUseCase.
type AlertOption func(*AlertUseCase)

// WithAlertClock overrides the clock of every counter.
func WithAlertClock(now func() time.Time) AlertOption {
	return func(uc *AlertUseCase) { uc.now = now }
}

// WithAlertLogger sets the logger.
func WithAlertLogger(l zerolog.Logger) AlertOption {
	return func(uc *AlertUseCase) { uc.logger = l }
}

// WithAlertMetrics sets the metrics sink.
func WithAlertMetrics(m AlertMetrics) AlertOption {
	return func(uc *AlertUseCase) { uc.metrics = m }
}

// NewAlertUseCase creates a new AlertUseCase.
func NewAlertUseCase(alertRepo AlertRepository, cfg AlertConfig, opts ...AlertOption) *AlertUseCase {
	uc := &AlertUseCase{
		alertRepo: alertRepo,
		metrics:   noopMetrics{},
		logger:    zerolog.Nop(),
		now:       time.Now,
		salt:      cfg.IPHashSalt,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.rateLimit = NewWindowCounter(cfg.RateLimit.Window, cfg.RateLimit.Threshold, uc.now)
	uc.auth = NewWindowCounter(cfg.AuthFailure.Window, cfg.AuthFailure.Threshold, uc.now)
	uc.node = NewWindowCounter(cfg.NodeFailure.Window, cfg.NodeFailure.Threshold, uc.now)

	return uc
}

// RecordRateLimitHit counts a rejected request from clientID.
func (uc *AlertUseCase) RecordRateLimitHit(ctx context.Context, clientID, route string) {
	if clientID == "" {
		return
	}

	hits, fire := uc.rateLimit.Hit(clientID)
	if !fire {
		return
	}

	uc.emit(ctx, &domain.Alert{
		Severity:   domain.AlertSeverityMedium,
		Category:   domain.AlertCategoryAbuse,
		EntityType: domain.AlertEntityBuilder,
		EntityID:   clientID,
		Title:      "Rate limit exceeded repeatedly: " + clientID,
		Evidence: map[string]any{
			"hits":      hits,
			"route":     route,
			"window_ms": uc.rateLimit.Window().Milliseconds(),
		},
	})
}

// RecordAuthFailure counts a rejected credential from ip. Only a salted hash
// of the address is kept.
func (uc *AlertUseCase) RecordAuthFailure(ctx context.Context, ip string) {
	if strings.TrimSpace(ip) == "" {
		return
	}

	ipHash := HashIP(ip, uc.salt)

	failures, fire := uc.auth.Hit(ipHash)
	if !fire {
		return
	}

	uc.emit(ctx, &domain.Alert{
		Severity:   domain.AlertSeverityHigh,
		Category:   domain.AlertCategoryAuth,
		EntityType: domain.AlertEntitySystem,
		EntityID:   ipHash,
		Title:      "Repeated invalid JWT from IP hash: " + ipHash,
		Evidence: map[string]any{
			"failures":  failures,
			"ip_hash":   ipHash,
			"window_ms": uc.auth.Window().Milliseconds(),
		},
	})
}

// RecordNodeFailure counts a failure reported for nodeID.
func (uc *AlertUseCase) RecordNodeFailure(ctx context.Context, nodeID, errMsg string) {
	if nodeID == "" {
		return
	}

	failures, fire := uc.node.Hit(nodeID)
	if !fire {
		return
	}

	uc.emit(ctx, &domain.Alert{
		Severity:   domain.AlertSeverityHigh,
		Category:   domain.AlertCategoryInfra,
		EntityType: domain.AlertEntityNode,
		EntityID:   nodeID,
		Title:      "High failure rate for node: " + nodeID,
		Evidence: map[string]any{
			"failures":   failures,
			"last_error": errMsg,
			"window_ms":  uc.node.Window().Milliseconds(),
		},
	})
}

// ListAlerts lists persisted alerts, newest first.
func (uc *AlertUseCase) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.alertRepo.List(ctx, filter)
}

// Flush blocks until every pending alert write has finished.
func (uc *AlertUseCase) Flush() {
	uc.wg.Wait()
}

func (uc *AlertUseCase) emit(ctx context.Context, alert *domain.Alert) {
	alert.Status = domain.AlertStatusOpen
	alert.CreatedAt = uc.now().UTC().Truncate(time.Millisecond)

	uc.metrics.AlertEmitted(alert.Category)
	uc.logger.Warn().
		Str("category", string(alert.Category)).
		Str("entity_id", alert.EntityID).
		Msg(alert.Title)

	uc.wg.Add(1)

	go func() {
		defer uc.wg.Done()

		// Outlives the request that triggered it.
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertPersistTimeout)
		defer cancel()

		if err := uc.alertRepo.Create(pctx, alert); err != nil {
			uc.metrics.AlertPersistFailed(alert.Category)
			uc.logger.Error().
				Err(fmt.Errorf("persist alert: %w", err)).
				Str("category", string(alert.Category)).
				Str("entity_id", alert.EntityID).
				Msg("failed to persist security alert")
		}
	}()
}

// HashIP returns the first 16 hex characters of SHA256(ip || salt).
func HashIP(ip, salt string) string {
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])[:16]
}
