package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "REDIS_ADDR", "CATALOG_CACHE_TTL", "KAFKA_BROKERS", "KAFKA_TOPIC", "LOG_LEVEL", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/purchasing")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "purchases", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.com, http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://admin.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CATALOG_CACHE_TTL", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CATALOG_CACHE_TTL", "-1m")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("CATALOG_CACHE_TTL", "1m")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load()
	assert.Error(t, err)
}
