// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the webtoon chapter API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the token service and the image store.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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
	"time"

	"github.com/taibuivan/yomira-toon/internal/admin"
	"github.com/taibuivan/yomira-toon/internal/api"
	"github.com/taibuivan/yomira-toon/internal/core/chapter"
	"github.com/taibuivan/yomira-toon/internal/core/series"
	"github.com/taibuivan/yomira-toon/internal/platform/config"
	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	"github.com/taibuivan/yomira-toon/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-toon/internal/platform/postgres"
	redisstore "github.com/taibuivan/yomira-toon/internal/platform/redis"
	"github.com/taibuivan/yomira-toon/internal/platform/sec"
	"github.com/taibuivan/yomira-toon/internal/storage"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	switch {
	case cfg.LogLevel() == slog.LevelDebug:
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	case cfg.Debug:
		log.Warn("debug_logging_ignored", slog.String("environment", cfg.Environment))
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	// Root context for background workers (rate limiter janitor).
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly rather than hanging.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("postgres_pool_closing")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("redis_client_closing")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Token Service & Image Store ────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	imageStore, err := storage.New(cfg, log)
	must(log, err, "initialize image store")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers([]api.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }},
		{Name: "redis", Check: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	adminService, err := admin.NewService(admin.NewAdminRepository(pool), jwtSvc, cfg.AdminTokenTTL, log)
	must(log, err, "initialize admin service")

	seriesService := series.NewService(series.NewSeriesRepository(pool), log)

	chapterService := chapter.NewService(
		chapter.NewChapterRepository(pool),
		imageStore,
		seriesService,
		chapter.NewRedisViewGuard(rdb, cfg.ViewDedupWindow),
		log,
	)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Admin:     admin.NewHandler(adminService),
		Series:    series.NewHandler(seriesService),
		Chapter:   chapter.NewHandler(chapterService),
	}

	server := api.NewServer(rootCtx, cfg, log, jwtSvc, handlers)

	// ── 10. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_listen_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("server_shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
