package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dockwise/scheduling-portal/internal/api"
	"github.com/dockwise/scheduling-portal/internal/broker"
	"github.com/dockwise/scheduling-portal/internal/config"
	"github.com/dockwise/scheduling-portal/internal/db"
	"github.com/dockwise/scheduling-portal/internal/delivery"
	"github.com/dockwise/scheduling-portal/internal/dispatch"
	"github.com/dockwise/scheduling-portal/internal/mailer"
	"github.com/dockwise/scheduling-portal/internal/metrics"
	"github.com/dockwise/scheduling-portal/internal/notify"
	"github.com/dockwise/scheduling-portal/internal/queue"
	"github.com/dockwise/scheduling-portal/internal/ratelimiter"
	"github.com/dockwise/scheduling-portal/internal/realtime"
	"github.com/dockwise/scheduling-portal/internal/repository"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- broker & queues ----
	// An absent broker is a supported configuration: the subsystem then
	// executes every job inline (degraded mode).
	brk, err := broker.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise broker", zap.Error(err))
	}
	pair := queue.NewPair(brk, cfg.QueuePollInterval, logger)

	// ---- collaborators ----
	hub := realtime.NewHub(logger)
	mail := mailer.NewResendMailer(cfg.ResendAPIKey, cfg.FromEmail, cfg.FromName)
	repo := repository.NewPgNotificationRepository(pool)

	// ---- delivery pipeline ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	limiter := ratelimiter.New(cfg.EmailRateLimit)

	dispatcher := dispatch.New(
		delivery.NewEmailHandler(mail, limiter, logger),
		delivery.NewRealtimeHandler(hub, logger),
		delivery.NewPushHandler(logger),
		logger,
	)

	subsystem := notify.New(brk, pair, dispatcher, repo, m, logger)

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	subsystem.Start(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(brk, pool, pair, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()

	// 1. Stop accepting new HTTP requests.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Workers, queues, broker — in that order, inside the subsystem.
	if err := subsystem.Shutdown(shutdownCtx); err != nil {
		logger.Error("subsystem shutdown error", zap.Error(err))
	}

	logger.Info("server stopped cleanly")
}
