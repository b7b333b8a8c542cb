package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "APP_ENV", "DATABASE_URL", "REDIS_ADDR", "JWT_SECRET", "ACCESS_TOKEN_TTL", "DB_MAX_CONNS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Address())
	assert.True(t, cfg.Development())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.EqualValues(t, 10, cfg.DBMaxConns)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DATABASE_URL", " postgres://localhost/gestao ")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REPORT_CACHE_TTL", "30s")
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-duration")
	t.Setenv("LOW_STOCK_RULE", "stock < 1.0")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Address())
	assert.Equal(t, "postgres://localhost/gestao", cfg.DatabaseURL)
	assert.True(t, cfg.DBAutoMigrate)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "stock < 1.0", cfg.LowStockRule)
}

func TestValidate_JWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	t.Setenv("APP_ENV", "production")
	cfg := Load()
	assert.Error(t, cfg.Validate())

	t.Setenv("APP_ENV", "development")
	cfg = Load()
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.JWTSecret)
}
