// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the typed process configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// DatabaseURL selects the Postgres backend; empty runs on the in-memory store.
	DatabaseURL   string
	DBMaxConns    int32
	DBAutoMigrate bool

	// RedisAddr selects the shared report cache; empty keeps it in process.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ReportCacheTTL time.Duration

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	LowStockRule       string
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	CleanupInterval time.Duration
}

const devSecret = "dev-secret-change-me"

// Load reads the configuration. Malformed numbers and durations fall back to defaults.
func Load() Config {
	return Config{
		Port:     getEnv("APP_PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:    int32(getEnvInt("DB_MAX_CONNS", 10)),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", false),

		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		ReportCacheTTL: getEnvDuration("REPORT_CACHE_TTL", 10*time.Minute),

		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		LowStockRule:       strings.TrimSpace(os.Getenv("LOW_STOCK_RULE")),
		IdempotencyEnabled: getEnvBool("IDEMPOTENCY_ENABLED", true),
		IdempotencyTTL:     getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", time.Hour),
	}
}

// Development reports whether the process runs in development mode.
func (c Config) Development() bool {
	return c.Env == "development"
}

// Address is the HTTP listen address.
func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Validate rejects settings that are unsafe outside development.
// In development an empty JWT secret is replaced by a fixed one.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.Development() {
			return errors.New("JWT_SECRET is required")
		}
		c.JWTSecret = devSecret
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
