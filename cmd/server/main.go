package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/satelink/econledger/internal/adapter/http"
	"github.com/satelink/econledger/internal/adapter/http/handler"
	"github.com/satelink/econledger/internal/adapter/http/middleware"
	postgresRepo "github.com/satelink/econledger/internal/adapter/repository/postgres"
	redisRepo "github.com/satelink/econledger/internal/adapter/repository/redis"
	"github.com/satelink/econledger/internal/infrastructure/auth"
	"github.com/satelink/econledger/internal/infrastructure/config"
	"github.com/satelink/econledger/internal/infrastructure/logger"
	"github.com/satelink/econledger/internal/infrastructure/metrics"
	"github.com/satelink/econledger/internal/infrastructure/postgres"
	"github.com/satelink/econledger/internal/infrastructure/redis"
	"github.com/satelink/econledger/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.SetGlobal(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: cfg.DatabaseMaxConnLifetime,
		LockTimeout:     cfg.ChainLockTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(connectCtx, redis.ClientConfig{URL: cfg.RedisURL})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)
	metrics.RegisterPoolStats(registry, poolStats(pool))

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	chainRepo := postgresRepo.NewChainRepository(pool, cfg.ChainLockID)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	alertRepo := postgresRepo.NewAlertRepository(pool)

	// Use cases
	balanceUC := usecase.NewBalanceUseCase(entryRepo, balanceRepo)
	accountUC := usecase.NewAccountUseCase(accountRepo)
	txnUC := usecase.NewTxnUseCase(
		txManager, accountRepo, entryRepo,
		usecase.NewHashChain(chainRepo), balanceUC,
		postgresRepo.NewTxnIDGenerator(),
		usecase.WithRetrier(postgresRepo.NewRetrierWithPolicy(retryPolicy(cfg), appLogger)),
		usecase.WithTimeout(cfg.LedgerTxnTimeout),
		usecase.WithLogger(appLogger),
		usecase.WithMetrics(appMetrics),
	)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, accountRepo, chainRepo, balanceRepo, appLogger)
	alertUC := usecase.NewAlertUseCase(alertRepo, alertConfig(cfg),
		usecase.WithAlertLogger(appLogger),
		usecase.WithAlertMetrics(appMetrics),
	)
	defer alertUC.Flush()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst,
		middleware.WithRateLimitRecorder(alertUC),
		middleware.WithRateLimitMetrics(appMetrics),
	)
	go rateLimiter.Run(ctx, limiterCleanupInterval, limiterMaxIdle)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler: handler.NewAccountHandler(accountUC, balanceUC),
		TxnHandler:     handler.NewTxnHandler(txnUC),
		LedgerHandler:  handler.NewLedgerHandler(ledgerUC),
		AlertHandler:   handler.NewAlertHandler(alertUC),
		HealthHandler:  handler.NewHealthHandler(healthChecks(pool, redisClient)...),
		Logger:         appLogger,
		Metrics:        appMetrics,
		Gatherer:       registry,
		RateLimiter:    rateLimiter,
		IdempotencyTTL: cfg.IdempotencyTTL,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}
	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}
	if cfg.AuthEnabled {
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		routerCfg.Authenticator = middleware.NewAuthenticator(jwtManager, alertUC, appMetrics)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Bool("auth", cfg.AuthEnabled).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func retryPolicy(cfg *config.Config) postgresRepo.RetryPolicy {
	return postgresRepo.RetryPolicy{
		MaxRetries:      cfg.LedgerRetryMax,
		InitialInterval: cfg.LedgerRetryInterval,
		MaxInterval:     cfg.LedgerRetryMaxWait,
	}
}

func alertConfig(cfg *config.Config) usecase.AlertConfig {
	return usecase.AlertConfig{
		IPHashSalt:  cfg.IPHashSalt,
		RateLimit:   usecase.AlertRule{Window: cfg.AnomalyWindow, Threshold: cfg.RateLimitAlertThreshold},
		AuthFailure: usecase.AlertRule{Window: cfg.AnomalyWindow, Threshold: cfg.AuthFailureAlertThreshold},
		NodeFailure: usecase.AlertRule{Window: cfg.AnomalyWindow, Threshold: cfg.NodeFailureAlertThreshold},
	}
}

func poolStats(pool *pgxpool.Pool) metrics.PoolStats {
	return func() (int32, int32, int32) {
		s := pool.Stat()
		return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthChecks(pool pinger, redisClient *goredis.Client) []handler.HealthCheck {
	checks := []handler.HealthCheck{{Name: "postgres", Check: pool.Ping}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	return checks
}
