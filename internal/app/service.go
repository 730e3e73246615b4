package app

import (
	"context"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no display logic of any kind.
type ApplicationService interface {
	// ListItems returns every item currently on sale.
	ListItems(ctx context.Context) (*ItemListResult, error)

	// ListCustomers returns all customers.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)

	// ListPurchases returns one page of purchase orders with their totals.
	ListPurchases(ctx context.Context, page int) (*PurchaseListResult, error)

	// NewPurchaseForm returns what a client needs to build a new purchase.
	NewPurchaseForm(ctx context.Context) (*PurchaseFormResult, error)

	// CreatePurchase creates a purchase and its lines atomically.
	CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error)

	// GetPurchase returns a purchase with priced lines. Order is nil for unknown ids.
	GetPurchase(ctx context.Context, purchaseID int) (*PurchaseResult, error)

	// EditPurchase returns the sellable catalog padded with the purchase's quantities.
	EditPurchase(ctx context.Context, purchaseID int) (*PurchaseEditResult, error)

	// UpdatePurchase sets the status and reconciles the lines atomically.
	UpdatePurchase(ctx context.Context, req UpdatePurchaseRequest) (*PurchaseResult, error)

	// DeletePurchase is not supported; it always returns core.ErrNotImplemented.
	DeletePurchase(ctx context.Context, purchaseID int) error
}
