package core

import (
	"context"
	"log/slog"
)

// CatalogCache holds a copy of the sellable item list.
// A miss is reported with ok == false and a nil error.
type CatalogCache interface {
	GetSellableItems(ctx context.Context) (items []Item, ok bool, err error)
	SetSellableItems(ctx context.Context, items []Item) error
}

// CatalogService provides read-only access to items and customers.
type CatalogService interface {
	// ListSellableItems returns every item currently on sale, ordered by id.
	ListSellableItems(ctx context.Context) ([]Item, error)

	// GetItem returns an item by id or a *NotFoundError.
	GetItem(ctx context.Context, itemID int) (*Item, error)

	// ListCustomers returns all customers ordered by id.
	ListCustomers(ctx context.Context) ([]Customer, error)
}

type catalogService struct {
	store Store
	cache CatalogCache
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(store Store, cache CatalogCache) CatalogService {
	return &catalogService{store: store, cache: cache}
}

// ListSellableItems serves from the cache when possible. Cache failures are
// logged and fall back to the store.
func (s *catalogService) ListSellableItems(ctx context.Context) ([]Item, error) {
	if s.cache != nil {
		items, ok, err := s.cache.GetSellableItems(ctx)
		if err != nil {
			slog.WarnContext(ctx, "catalog cache read failed", "err", err)
		} else if ok {
			return items, nil
		}
	}

	items, err := s.store.ListSellableItems(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSellableItems(ctx, items); err != nil {
			slog.WarnContext(ctx, "catalog cache write failed", "err", err)
		}
	}
	return items, nil
}

func (s *catalogService) GetItem(ctx context.Context, itemID int) (*Item, error) {
	return s.store.GetItem(ctx, itemID)
}

func (s *catalogService) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.store.ListCustomers(ctx)
}
