package app

// CreatePurchaseRequest is the input for creating a new purchase.
type CreatePurchaseRequest struct {
	CustomerID int
	Status     string // empty means draft
	Lines      []LineRequest
}

// UpdatePurchaseRequest is the input for updating an existing purchase.
type UpdatePurchaseRequest struct {
	PurchaseID int
	Status     string // empty keeps the current status
	Version    int    // 0 skips the stale-write check
	Lines      []LineRequest
}

// LineRequest is a single (item, quantity) pair. Quantity 0 removes the item.
type LineRequest struct {
	ItemID   int
	Quantity int
}
