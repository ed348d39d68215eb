// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

// Command api is the entry point for the MealGrid HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mealgrid/mealgrid/internal/api"
	"github.com/mealgrid/mealgrid/internal/catalog/outlet"
	"github.com/mealgrid/mealgrid/internal/orders"
	"github.com/mealgrid/mealgrid/internal/platform/config"
	"github.com/mealgrid/mealgrid/internal/platform/constants"
	"github.com/mealgrid/mealgrid/internal/platform/migration"
	"github.com/mealgrid/mealgrid/internal/platform/postgres"
	"github.com/mealgrid/mealgrid/internal/platform/redis"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
	"github.com/mealgrid/mealgrid/internal/users/auth"
	"github.com/mealgrid/mealgrid/internal/vendors/profile"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal startup error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	rootContext, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// # Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// # Infrastructure
	pool, err := postgres.NewPool(rootContext, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	cache, err := redis.NewClient(rootContext, cfg.RedisURL, logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		return err
	}

	codec, err := sec.NewTokenCodec(cfg.JWTSecret, constants.AuthIssuer)
	if err != nil {
		return err
	}

	// # Repositories
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(cache)
	verificationTokenRepository := auth.NewVerificationTokenRepository(cache)
	profileRepository := profile.NewProfileRepository(pool)
	outletRepository := outlet.NewOutletRepository(pool)
	menuRepository := outlet.NewMenuRepository(pool)
	orderRepository := orders.NewOrderRepository(pool)

	// # Services
	authService := auth.NewService(
		userRepository,
		sessionRepository,
		resetTokenRepository,
		verificationTokenRepository,
		codec,
	)
	profileService := profile.NewService(profileRepository, userRepository, sessionRepository, logger)
	outletService := outlet.NewService(outletRepository, menuRepository, logger)
	orderService := orders.NewService(orderRepository, outletRepository, menuRepository, logger)

	// Expired and stale sessions are purged in the background for as long
	// as the server runs.
	sweeper := auth.NewSweeper(authService, auth.SweepInterval, logger)
	go sweeper.Run(rootContext)

	// # HTTP Surface
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return postgres.Ping(rootContext, pool) },
		CheckCache:    func() error { return redis.Ping(rootContext, cache) },
	}, logger)

	server := api.NewServer(rootContext, cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, codec),
		Vendors:   profile.NewHandler(profileService, codec, authService),
		Catalog:   outlet.NewHandler(outletService, codec, authService),
		Orders:    orders.NewHandler(orderService, codec, authService),
	})

	// # Lifecycle
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-rootContext.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
