// Package main applies or rolls back database migrations.
//
// Usage:
//
//	migrate up     apply every pending migration
//	migrate down   roll back the latest applied migration
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gestaopro/internal/config"
	"gestaopro/internal/infrastructure/storage/postgres"
	"gestaopro/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.Development()})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	switch command {
	case "up":
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatalw("migration failed", "error", err)
		}
		log.Infow("migrations applied", "count", applied)
	case "down":
		version, err := postgres.Rollback(ctx, pool)
		if err != nil {
			log.Fatalw("rollback failed", "error", err)
		}
		if version == "" {
			log.Info("nothing to roll back")
			return
		}
		log.Infow("migration rolled back", "migration", version)
	default:
		log.Fatalw("unknown command, expected up or down", "command", command)
	}
}
