// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by every command.
type Config struct {
	DatabaseURL     string
	ServerPort      string
	AllowedOrigins  []string // empty disables CORS
	RedisAddr       string // empty disables the catalog cache
	CatalogCacheTTL time.Duration
	KafkaBrokers    []string // empty disables event publishing
	KafkaTopic      string
	LogLevel        slog.Level
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServerPort:     getenv("SERVER_PORT", "8080"),
		AllowedOrigins: splitAndTrim(os.Getenv("ALLOWED_ORIGINS")),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBrokers:   splitAndTrim(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getenv("KAFKA_TOPIC", "purchases"),
	}

	ttl, err := time.ParseDuration(getenv("CATALOG_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: must be positive")
	}
	cfg.CatalogCacheTTL = ttl

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
