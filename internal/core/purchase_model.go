package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PageSize is the fixed number of orders returned per page by List.
const PageSize = 50

// PurchaseStatus is the lifecycle state stored on a purchase header.
type PurchaseStatus string

const (
	StatusDraft     PurchaseStatus = "draft"
	StatusPlaced    PurchaseStatus = "placed"
	StatusFulfilled PurchaseStatus = "fulfilled"
	StatusCancelled PurchaseStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s PurchaseStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPlaced, StatusFulfilled, StatusCancelled:
		return true
	}
	return false
}

// Item is a catalog entry. It is read-only to the purchasing module.
type Item struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Memo      string          `json:"memo,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	IsSelling bool            `json:"is_selling"`
}

// Customer is referenced by purchases and shown on order views.
type Customer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Kana  string `json:"kana,omitempty"`
	Tel   string `json:"tel,omitempty"`
	Email string `json:"email,omitempty"`
}

// Purchase is the persisted order header.
type Purchase struct {
	ID         int            `json:"id"`
	CustomerID int            `json:"customer_id"`
	Status     PurchaseStatus `json:"status"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// LineItem associates one catalog item with a purchase.
// ID grows with insertion and defines display order within a purchase.
type LineItem struct {
	ID         int `json:"id"`
	PurchaseID int `json:"purchase_id"`
	ItemID     int `json:"item_id"`
	Quantity   int `json:"quantity"`
}

// PurchaseHeader is a purchase joined with its customer's name.
type PurchaseHeader struct {
	Purchase
	CustomerName string `json:"customer_name"`
}

// LineDetail is one line item joined with the item's current catalog data.
type LineDetail struct {
	LineID     int
	PurchaseID int
	ItemID     int
	ItemName   string
	UnitPrice  decimal.Decimal
	Quantity   int
}

// Order is the read-side aggregate of a purchase. Total is recomputed from
// current catalog prices on every read.
type Order struct {
	ID           int             `json:"id"`
	CustomerID   int             `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Status       PurchaseStatus  `json:"status"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	Total        decimal.Decimal `json:"total"`
}

// OrderLine is one priced line of an order.
type OrderLine struct {
	ItemID    int             `json:"item_id"`
	ItemName  string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderPage is one page of the order index.
type OrderPage struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"current_page"`
	PerPage     int     `json:"per_page"`
	Total       int     `json:"total"`
	LastPage    int     `json:"last_page"`
}

// PurchaseDetail is the show payload. Order is nil when the purchase does not exist.
type PurchaseDetail struct {
	Order *Order      `json:"order"`
	Lines []OrderLine `json:"lines"`
}

// EditLine is one row of the edit form: a sellable item padded with the
// quantity currently on the purchase (0 when absent).
type EditLine struct {
	ItemID    int             `json:"item_id"`
	ItemName  string          `json:"item_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// PurchaseEdit is the edit payload. Order is nil when the purchase does not exist.
type PurchaseEdit struct {
	Order *Order     `json:"order"`
	Lines []EditLine `json:"lines"`
}

// PurchaseForm is the create-form payload.
type PurchaseForm struct {
	Items     []Item     `json:"items"`
	Customers []Customer `json:"customers"`
}

// LineInput is one submitted (item, quantity) pair.
type LineInput struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// CreatePurchaseInput holds the fields required to create a purchase.
type CreatePurchaseInput struct {
	CustomerID int
	Status     PurchaseStatus // empty means draft
	Lines      []LineInput
}

// UpdatePurchaseInput holds the fields accepted when updating a purchase.
type UpdatePurchaseInput struct {
	PurchaseID int
	Status     PurchaseStatus // empty keeps the current status
	Version    int            // 0 skips the optimistic version check
	Lines      []LineInput
}

// PurchaseService provides the purchase lifecycle operations.
type PurchaseService interface {
	// List returns one page of orders in insertion order. Pages start at 1.
	List(ctx context.Context, page int) (OrderPage, error)

	// NewForm returns the sellable items and customers needed to build a new purchase.
	NewForm(ctx context.Context) (PurchaseForm, error)

	// Create inserts a purchase and its lines in one transaction.
	Create(ctx context.Context, in CreatePurchaseInput) (*PurchaseDetail, error)

	// Show returns the order aggregate and its priced lines.
	// An unknown id yields an empty detail, not an error.
	Show(ctx context.Context, purchaseID int) (*PurchaseDetail, error)

	// Edit returns one row per sellable item with the purchase's quantities.
	Edit(ctx context.Context, purchaseID int) (*PurchaseEdit, error)

	// Update sets the status and reconciles the lines in one transaction.
	Update(ctx context.Context, in UpdatePurchaseInput) (*PurchaseDetail, error)

	// Destroy is not supported and always returns ErrNotImplemented.
	Destroy(ctx context.Context, purchaseID int) error
}
