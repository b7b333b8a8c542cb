package app

import (
	"context"
	"fmt"

	"gestaopro/internal/config"
	"gestaopro/internal/infrastructure/cache"
	"gestaopro/internal/infrastructure/storage/postgres"
	"gestaopro/pkg/logger"
)

// OpenBackend selects the storage from cfg. An empty DatabaseURL runs on the in-memory store.
// The returned close func releases the database pool.
func OpenBackend(ctx context.Context, cfg config.Config, log *logger.Logger) (*Backend, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is empty, data is kept in memory only")
		return NewMemoryBackend(cfg.IdempotencyTTL), func() {}, nil
	}

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	backend, err := NewPostgresBackend(pool, cfg.IdempotencyTTL)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	if cfg.DBAutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Infow("migrations applied", "count", applied)
	}

	return backend, pool.Close, nil
}

// OpenReportCache returns the Redis cache when REDIS_ADDR is set and the in-process one otherwise.
func OpenReportCache(ctx context.Context, cfg config.Config, log *logger.Logger) (cache.ReportCache, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.ReportCacheTTL), func() {}, nil
	}

	rc := cache.NewRedis(cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.ReportCacheTTL,
	})
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Infow("report cache connected", "addr", cfg.RedisAddr)

	return rc, func() { _ = rc.Close() }, nil
}
