package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"member-finance/config"
	httpHandler "member-finance/internal/adapter/http/handler"
	amqpMessaging "member-finance/internal/adapter/messaging/amqp"
	pgStorage "member-finance/internal/adapter/storage/postgres"
	redisStorage "member-finance/internal/adapter/storage/redis"
	"member-finance/internal/core/ports"
	"member-finance/internal/metrics"
	"member-finance/internal/service"
	"member-finance/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	// A local .env is optional; real deployments set MF_* directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("MF_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting member finance service")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("MF_JWT_SECRET is required")
	}

	metrics.Init()
	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := pgStorage.RunMigrations(cfg.Database, logger.Component(log, "migrate")); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	healthCheckers := []ports.HealthChecker{pgStorage.NewHealthCheck(pool)}

	// Redis backs the dashboard cache and rate limiting; both are skipped when disabled.
	var (
		dashboardCache ports.DashboardCache
		rateLimitStore *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		dashboardCache = redisStorage.NewDashboardCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled, dashboard cache and rate limiting are off")
	}

	var auditPublisher ports.AuditPublisher
	if cfg.AMQP.URL != "" {
		publisher, err := amqpMessaging.NewPublisher(cfg.AMQP, logger.Component(log, "amqp"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		defer publisher.Close()
		auditPublisher = publisher
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("AMQP publisher connected")
	}

	// Repositories
	txRepo := pgStorage.NewTransactionRepo(pool)
	bankRepo := pgStorage.NewBankBalanceRepo(pool)
	contribRepo := pgStorage.NewContributionRepo(pool)
	memberRepo := pgStorage.NewMemberRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)

	// Services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(auditRepo, auditPublisher, logger.Component(log, "audit"))
	financeSvc := service.NewFinanceService(txRepo, bankRepo, contribRepo, auditSvc, logger.Component(log, "finance"))
	dashboardSvc := service.NewDashboardService(
		financeSvc,
		dashboardCache,
		decimal.NewFromInt(cfg.Reconciliation.Tolerance),
		cfg.Cache.DashboardTTL,
		logger.Component(log, "dashboard"),
	)
	forms := service.NewTransactionForms(dashboardSvc, logger.Component(log, "form"))

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		FinanceSvc:     financeSvc,
		DashboardSvc:   dashboardSvc,
		Forms:          forms,
		MemberRepo:     memberRepo,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight audit writes finish before the pool and broker close.
	auditSvc.Wait()

	log.Info().Msg("Server exited")
}
