package core_test

import (
	"context"
	"errors"
	"testing"

	"purchasing-admin/internal/core"
	"purchasing-admin/internal/core/coretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	items  []core.Item
	hit    bool
	getErr error
	sets   int
}

func (c *fakeCache) GetSellableItems(ctx context.Context) ([]core.Item, bool, error) {
	return c.items, c.hit, c.getErr
}

func (c *fakeCache) SetSellableItems(ctx context.Context, items []core.Item) error {
	c.items, c.hit = items, true
	c.sets++
	return nil
}

func TestCatalog_ListSellableItems_CachesOnMiss(t *testing.T) {
	store := coretest.NewStore()
	store.AddItem("A", "1", true)
	store.AddItem("B", "2", false)
	cache := &fakeCache{}
	svc := core.NewCatalogService(store, cache)
	ctx := context.Background()

	items, err := svc.ListSellableItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, cache.sets)

	store.AddItem("C", "3", true)
	items, err = svc.ListSellableItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "served from cache")
	assert.Equal(t, 1, cache.sets)
}

func TestCatalog_ListSellableItems_CacheErrorFallsBack(t *testing.T) {
	store := coretest.NewStore()
	store.AddItem("A", "1", true)
	svc := core.NewCatalogService(store, &fakeCache{getErr: errors.New("redis down")})

	items, err := svc.ListSellableItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCatalog_GetItemNotFound(t *testing.T) {
	svc := core.NewCatalogService(coretest.NewStore(), nil)
	_, err := svc.GetItem(context.Background(), 5)
	assert.True(t, core.IsNotFound(err))
}
