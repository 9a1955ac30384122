package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/usecase"
	"github.com/satelink/econledger/internal/usecase/mocks"
)

func newAlerts(clock *fakeClock, opts ...usecase.AlertOption) (*usecase.AlertUseCase, *mocks.Store) {
	store := mocks.NewStore()
	cfg := usecase.DefaultAlertConfig()
	cfg.IPHashSalt = "pepper"

	opts = append([]usecase.AlertOption{usecase.WithAlertClock(clock.Now)}, opts...)

	return usecase.NewAlertUseCase(store.AlertRepo(), cfg, opts...), store
}

func TestAlertUseCase_RepeatedAuthFailures(t *testing.T) {
	clock := newFakeClock()
	uc, store := newAlerts(clock)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		uc.RecordAuthFailure(ctx, "203.0.113.7")
		clock.Advance(10 * time.Second)
	}
	uc.Flush()

	alerts := store.Alerts()
	require.Len(t, alerts, 1)

	alert := alerts[0]
	ipHash := usecase.HashIP("203.0.113.7", "pepper")
	assert.Equal(t, domain.AlertSeverityHigh, alert.Severity)
	assert.Equal(t, domain.AlertCategoryAuth, alert.Category)
	assert.Equal(t, domain.AlertEntitySystem, alert.EntityType)
	assert.Equal(t, ipHash, alert.EntityID)
	assert.Equal(t, domain.AlertStatusOpen, alert.Status)
	assert.Equal(t, "Repeated invalid JWT from IP hash: "+ipHash, alert.Title)
	assert.Equal(t, 10, alert.Evidence["failures"])
	assert.Equal(t, int64(300000), alert.Evidence["window_ms"])
	assert.NotContains(t, alert.Title, "203.0.113.7")

	// the 11th failure inside the same window does not alert again
	uc.RecordAuthFailure(ctx, "203.0.113.7")
	uc.Flush()
	assert.Len(t, store.Alerts(), 1)

	// once the window has passed, counting starts over
	clock.Advance(5 * time.Minute)
	for i := 0; i < 9; i++ {
		uc.RecordAuthFailure(ctx, "203.0.113.7")
	}
	uc.Flush()
	assert.Len(t, store.Alerts(), 1)

	uc.RecordAuthFailure(ctx, "203.0.113.7")
	uc.Flush()
	assert.Len(t, store.Alerts(), 2)
}

func TestAlertUseCase_RateLimitAndNodeFailures(t *testing.T) {
	clock := newFakeClock()
	uc, store := newAlerts(clock)
	ctx := context.Background()

	for i := 0; i < 19; i++ {
		uc.RecordRateLimitHit(ctx, "builder-1", "/api/v1/transactions")
	}
	for i := 0; i < 15; i++ {
		uc.RecordNodeFailure(ctx, "node-7", "timeout")
	}
	uc.Flush()

	alerts := store.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertCategoryInfra, alerts[0].Category)
	assert.Equal(t, "High failure rate for node: node-7", alerts[0].Title)
	assert.Equal(t, "timeout", alerts[0].Evidence["last_error"])

	uc.RecordRateLimitHit(ctx, "builder-1", "/api/v1/transactions")
	uc.Flush()

	abuse, err := uc.ListAlerts(ctx, domain.AlertFilter{Category: domain.AlertCategoryAbuse})
	require.NoError(t, err)
	require.Len(t, abuse, 1)
	assert.Equal(t, domain.AlertSeverityMedium, abuse[0].Severity)
	assert.Equal(t, domain.AlertEntityBuilder, abuse[0].EntityType)
	assert.Equal(t, "/api/v1/transactions", abuse[0].Evidence["route"])
	assert.Equal(t, 20, abuse[0].Evidence["hits"])
}

func TestAlertUseCase_IgnoresEmptyKeys(t *testing.T) {
	uc, store := newAlerts(newFakeClock())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		uc.RecordAuthFailure(ctx, "")
		uc.RecordRateLimitHit(ctx, "", "/")
		uc.RecordNodeFailure(ctx, "", "boom")
	}
	uc.Flush()

	assert.Empty(t, store.Alerts())
}

func TestAlertUseCase_PersistenceFailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockAlertMetrics(ctrl)
	metrics.EXPECT().AlertEmitted(domain.AlertCategoryInfra)
	metrics.EXPECT().AlertPersistFailed(domain.AlertCategoryInfra)

	var logs bytes.Buffer
	store := mocks.NewStore()
	repo := store.AlertRepo()
	repo.CreateFunc = func(context.Context, *domain.Alert) error {
		return errors.New("database is down")
	}

	cfg := usecase.DefaultAlertConfig()
	cfg.NodeFailure.Threshold = 1

	uc := usecase.NewAlertUseCase(repo, cfg,
		usecase.WithAlertMetrics(metrics),
		usecase.WithAlertLogger(zerolog.New(&logs)),
	)

	// the caller's context is already gone by the time the write happens
	ctx, cancel := context.WithCancel(context.Background())
	uc.RecordNodeFailure(ctx, "node-1", "refused")
	cancel()
	uc.Flush()

	if !strings.Contains(logs.String(), "failed to persist security alert") {
		t.Fatalf("expected persistence failure to be logged, got %q", logs.String())
	}
}

func TestHashIP(t *testing.T) {
	a := usecase.HashIP("198.51.100.1", "salt")

	if len(a) != 16 {
		t.Fatalf("expected 16 hex characters, got %q", a)
	}

	if a != usecase.HashIP("198.51.100.1", "salt") {
		t.Fatal("expected hash to be deterministic")
	}

	if a == usecase.HashIP("198.51.100.1", "other") {
		t.Fatal("expected salt to change the hash")
	}
}
