package core

import (
	"context"
)

// Store is the data-access boundary of the purchasing module.
// Read methods run outside any transaction; writes go through WithinTx.
type Store interface {
	ListSellableItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, itemID int) (*Item, error)
	ListCustomers(ctx context.Context) ([]Customer, error)

	CountPurchases(ctx context.Context) (int, error)
	// ListPurchases returns headers ordered by purchase id.
	ListPurchases(ctx context.Context, limit, offset int) ([]PurchaseHeader, error)
	// GetPurchase returns a *NotFoundError when the purchase does not exist.
	GetPurchase(ctx context.Context, purchaseID int) (*PurchaseHeader, error)
	// ListLineDetails returns the lines of the given purchases ordered by
	// purchase id, then line id.
	ListLineDetails(ctx context.Context, purchaseIDs []int) ([]LineDetail, error)

	// WithinTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back otherwise; fn's error is returned unchanged.
	WithinTx(ctx context.Context, fn func(tx PurchaseTx) error) error
}

// PurchaseTx is the set of operations available inside a write transaction.
type PurchaseTx interface {
	// ItemsByIDs returns the existing items among ids, keyed by id.
	ItemsByIDs(ctx context.Context, ids []int) (map[int]Item, error)
	CustomerExists(ctx context.Context, customerID int) (bool, error)

	InsertPurchase(ctx context.Context, customerID int, status PurchaseStatus) (*Purchase, error)
	// LockPurchase reads the purchase header and holds it until the
	// transaction ends. Returns a *NotFoundError when absent.
	LockPurchase(ctx context.Context, purchaseID int) (*Purchase, error)
	// UpdatePurchase writes the status and increments the version.
	UpdatePurchase(ctx context.Context, purchaseID int, status PurchaseStatus) (*Purchase, error)

	// GetPurchase and ListLineDetails behave as their Store counterparts but
	// see the transaction's own writes.
	GetPurchase(ctx context.Context, purchaseID int) (*PurchaseHeader, error)
	ListLineDetails(ctx context.Context, purchaseIDs []int) ([]LineDetail, error)

	LineItems(ctx context.Context, purchaseID int) ([]LineItem, error)
	InsertLineItem(ctx context.Context, purchaseID, itemID, quantity int) error
	UpdateLineItemQuantity(ctx context.Context, purchaseID, itemID, quantity int) error
	DeleteLineItem(ctx context.Context, purchaseID, itemID int) error
}
