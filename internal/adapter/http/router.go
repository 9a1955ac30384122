package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/satelink/econledger/internal/adapter/http/handler"
	"github.com/satelink/econledger/internal/adapter/http/middleware"
	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/infrastructure/metrics"
	"github.com/satelink/econledger/internal/usecase"
)

// RouterConfig holds dependencies for the router. Optional pieces are
// skipped when nil.
type RouterConfig struct {
	AccountHandler *handler.AccountHandler
	TxnHandler     *handler.TxnHandler
	LedgerHandler  *handler.LedgerHandler
	AlertHandler   *handler.AlertHandler
	HealthHandler  *handler.HealthHandler

	Logger           zerolog.Logger
	Metrics          *metrics.Metrics
	Gatherer         prometheus.Gatherer
	Authenticator    *middleware.Authenticator
	RateLimiter      *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Only enable it behind a proxy that overwrites them, since
	// auth failure counting and rate limits key on that address.
	TrustProxyHeaders bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Authenticator != nil {
			r.Use(cfg.Authenticator.Wrap)
		}
		// Runs after auth so limits key on the authenticated subject.
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		read := requireRole(cfg.Authenticator, domain.RoleViewer)
		write := requireRole(cfg.Authenticator, domain.RoleOperator)

		r.Group(func(r chi.Router) {
			r.Use(read)
			r.Get("/accounts", cfg.AccountHandler.List)
			r.Get("/accounts/{key}", cfg.AccountHandler.Get)
			r.Get("/accounts/{key}/balance", cfg.AccountHandler.Balance)
			r.Get("/accounts/{key}/entries", cfg.TxnHandler.ListByAccount)
			r.Get("/transactions/{id}", cfg.TxnHandler.Get)
			r.Get("/ledger/chain/verify", cfg.LedgerHandler.VerifyChain)
			r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/ledger/reconcile", cfg.LedgerHandler.Reconcile)
			r.Get("/alerts", cfg.AlertHandler.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(write)
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}
			r.Post("/accounts", cfg.AccountHandler.Ensure)
			r.Post("/transactions", cfg.TxnHandler.Create)
			r.Post("/nodes/{id}/failures", cfg.AlertHandler.RecordNodeFailure)
		})
	})

	return r
}

// requireRole is a no-op when authentication is disabled.
func requireRole(authn *middleware.Authenticator, role domain.Role) func(http.Handler) http.Handler {
	if authn == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequireRole(role)
}
