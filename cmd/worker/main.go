// Package main is the entry point for the Gestão Pro background worker.
// It periodically purges expired refresh tokens and idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gestaopro/internal/app"
	"gestaopro/internal/config"
	"gestaopro/internal/domain/auth"
	"gestaopro/internal/infrastructure/storage/postgres"
	"gestaopro/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required, the in-memory store has nothing to clean")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting gestaopro worker")

	backend, closeBackend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer closeBackend()

	services, err := app.NewServices(cfg, backend, nil)
	if err != nil {
		log.Fatalw("failed to build services", "error", err)
	}

	worker := NewCleanupWorker(services.Auth, backend, cfg.CleanupInterval, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// CleanupWorker runs the housekeeping jobs on a fixed interval.
type CleanupWorker struct {
	auth     *auth.Service
	backend  *app.Backend
	interval time.Duration
	log      *logger.Logger
}

func NewCleanupWorker(authService *auth.Service, backend *app.Backend, interval time.Duration, log *logger.Logger) *CleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupWorker{
		auth:     authService,
		backend:  backend,
		interval: interval,
		log:      log.WithComponent("worker"),
	}
}

// Run blocks until ctx is cancelled. The first pass runs immediately.
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *CleanupWorker) runOnce(ctx context.Context) {
	w.cleanupSessions(ctx)
	w.cleanupIdempotency(ctx)
	if w.backend.Pool != nil {
		postgres.LogPoolStats(ctx, w.backend.Pool)
	}
}

func (w *CleanupWorker) cleanupSessions(ctx context.Context) {
	count, err := w.auth.CleanupExpiredTokens(ctx)
	if err != nil {
		w.log.Errorw("failed to clean up refresh tokens", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("cleaned up expired sessions", "count", count)
	}
}

func (w *CleanupWorker) cleanupIdempotency(ctx context.Context) {
	count, err := w.backend.Idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("failed to clean up idempotency keys", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", count)
	}
}
