// Package bootstrap wires the purchasing services from a Config. Optional
// infrastructure (Redis, Kafka) is attached only when configured.
package bootstrap

import (
	"context"
	"log/slog"

	"purchasing-admin/internal/adapters/cache"
	"purchasing-admin/internal/adapters/events"
	"purchasing-admin/internal/app"
	"purchasing-admin/internal/config"
	"purchasing-admin/internal/core"
	"purchasing-admin/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Runtime holds the wired ApplicationService and the resources it owns.
type Runtime struct {
	Service app.ApplicationService
	Pool    *pgxpool.Pool

	redis     *redis.Client
	publisher *events.KafkaPublisher
}

// New connects to Postgres and, when configured, Redis and Kafka.
// A Redis connection failure disables the cache rather than failing startup.
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Pool: pool}
	store := core.NewPostgresStore(pool)

	var catalogCache core.CatalogCache
	if cfg.RedisAddr != "" {
		client, err := cache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			slog.WarnContext(ctx, "catalog cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			rt.redis = client
			catalogCache = cache.NewRedisCatalogCache(client, cfg.CatalogCacheTTL)
		}
	}

	var publisher core.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		rt.publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = rt.publisher
		slog.InfoContext(ctx, "publishing purchase events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	catalog := core.NewCatalogService(store, catalogCache)
	purchases := core.NewPurchaseService(store, catalog, publisher)
	rt.Service = app.NewAppService(catalog, purchases)
	return rt, nil
}

// Close releases every connection opened by New.
func (rt *Runtime) Close() {
	if rt.publisher != nil {
		if err := rt.publisher.Close(); err != nil {
			slog.Error("closing kafka writer", "err", err)
		}
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	rt.Pool.Close()
}
