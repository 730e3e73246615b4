package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"purchasing-admin/internal/core"

	"github.com/redis/go-redis/v9"
)

const sellableItemsKey = "catalog:sellable-items"

// RedisCatalogCache stores the sellable item list as a JSON blob with a TTL.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCatalogCache constructs a RedisCatalogCache over client.
func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{client: client, ttl: ttl}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisCatalogCache) GetSellableItems(ctx context.Context) ([]core.Item, bool, error) {
	raw, err := c.client.Get(ctx, sellableItemsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []core.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached items: %w", err)
	}
	return items, true, nil
}

func (c *RedisCatalogCache) SetSellableItems(ctx context.Context, items []core.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	return c.client.Set(ctx, sellableItemsKey, raw, c.ttl).Err()
}

// Invalidate drops the cached list so the next read goes to the store.
func (c *RedisCatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, sellableItemsKey).Err()
}
