package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintel-wallet-backend/config"
	httpHandler "fintel-wallet-backend/internal/adapter/http/handler"
	pgStorage "fintel-wallet-backend/internal/adapter/storage/postgres"
	redisStorage "fintel-wallet-backend/internal/adapter/storage/redis"
	"fintel-wallet-backend/internal/core/ports"
	"fintel-wallet-backend/internal/service"
	"fintel-wallet-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Fintel Wallet Backend")

	ctx := context.Background()

	// Run database migrations
	if err := pgStorage.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	ownerRepo := pgStorage.NewOwnerRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool, cfg.Wallet.Currency)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	transferRepo := pgStorage.NewTransferRepo(pool)
	transactor := pgStorage.NewTransactor(pool, cfg.Wallet.LockTimeout)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)

	// Initialize core services
	identitySvc := service.NewIdentityService(ownerRepo, cfg.Wallet.CountryCode)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	refGen := service.NewReferenceGenerator()
	notifier := service.NewTransferNotifier(
		cfg.Notify.WebhookURL,
		cfg.Notify.Timeout,
		&http.Client{Timeout: cfg.Notify.Timeout},
		log,
	)

	// Initialize business services
	transferSvc := service.NewTransferCoordinator(
		transactor,
		walletRepo,
		ledgerRepo,
		transferRepo,
		identitySvc,
		refGen,
		idempotencyCache,
		notifier,
		cfg.Wallet.Currency,
		log,
	)
	accountSvc := service.NewAccountService(identitySvc, walletRepo, ledgerRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TransferSvc:    transferSvc,
		AccountSvc:     accountSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
