// Package main is the entry point for the Gestão Pro API server.
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

	"gestaopro/internal/app"
	"gestaopro/internal/config"
	v1 "gestaopro/internal/infrastructure/http/v1"
	"gestaopro/internal/infrastructure/http/v1/handlers"
	"gestaopro/pkg/logger"
)

var version = "dev"

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

	ctx := context.Background()
	log.Infow("starting gestaopro server", "version", version, "env", cfg.Env)

	// --- Storage ---
	backend, closeBackend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer closeBackend()
	log.Infow("storage ready", "backend", backend.Name)

	// --- Report cache ---
	reportCache, closeCache, err := app.OpenReportCache(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open report cache", "error", err)
	}
	defer closeCache()

	services, err := app.NewServices(cfg, backend, reportCache)
	if err != nil {
		log.Fatalw("failed to build services", "error", err)
	}

	checks := map[string]handlers.Pinger{"storage": backend}
	if p, ok := reportCache.(handlers.Pinger); ok {
		checks["cache"] = p
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Services:           services,
		Logger:             log,
		Pool:               backend.Pool,
		HealthChecks:       checks,
		IdempotencyEnabled: cfg.IdempotencyEnabled,
		Version:            version,
		Debug:              cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr, "backend", backend.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
