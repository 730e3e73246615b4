package app

import (
	"context"
	"log/slog"

	"purchasing-admin/internal/core"
)

type appService struct {
	catalog   core.CatalogService
	purchases core.PurchaseService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(catalog core.CatalogService, purchases core.PurchaseService) ApplicationService {
	return &appService{
		catalog:   catalog,
		purchases: purchases,
	}
}

// ListItems returns every item currently on sale.
func (s *appService) ListItems(ctx context.Context) (*ItemListResult, error) {
	items, err := s.catalog.ListSellableItems(ctx)
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: items}, nil
}

// ListCustomers returns all customers.
func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.catalog.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

// ListPurchases returns one page of purchase orders.
func (s *appService) ListPurchases(ctx context.Context, page int) (*PurchaseListResult, error) {
	p, err := s.purchases.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &PurchaseListResult{Page: p}, nil
}

// NewPurchaseForm returns the sellable items and customers.
func (s *appService) NewPurchaseForm(ctx context.Context) (*PurchaseFormResult, error) {
	form, err := s.purchases.NewForm(ctx)
	if err != nil {
		return nil, err
	}
	return &PurchaseFormResult{Form: form}, nil
}

// CreatePurchase creates a purchase and its lines.
func (s *appService) CreatePurchase(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResult, error) {
	detail, err := s.purchases.Create(ctx, core.CreatePurchaseInput{
		CustomerID: req.CustomerID,
		Status:     core.PurchaseStatus(req.Status),
		Lines:      toLineInputs(req.Lines),
	})
	if err != nil {
		slog.WarnContext(ctx, "create purchase failed", "customer_id", req.CustomerID, "err", err)
		return nil, err
	}
	slog.InfoContext(ctx, "purchase created",
		"purchase_id", detail.Order.ID, "lines", len(detail.Lines), "total", detail.Order.Total.StringFixed(2))
	return &PurchaseResult{Order: detail.Order, Lines: detail.Lines}, nil
}

// GetPurchase returns one purchase with its priced lines.
func (s *appService) GetPurchase(ctx context.Context, purchaseID int) (*PurchaseResult, error) {
	detail, err := s.purchases.Show(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Order: detail.Order, Lines: detail.Lines}, nil
}

// EditPurchase returns the edit form rows for one purchase.
func (s *appService) EditPurchase(ctx context.Context, purchaseID int) (*PurchaseEditResult, error) {
	edit, err := s.purchases.Edit(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	return &PurchaseEditResult{Order: edit.Order, Lines: edit.Lines}, nil
}

// UpdatePurchase sets the status and reconciles the lines.
func (s *appService) UpdatePurchase(ctx context.Context, req UpdatePurchaseRequest) (*PurchaseResult, error) {
	detail, err := s.purchases.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: req.PurchaseID,
		Status:     core.PurchaseStatus(req.Status),
		Version:    req.Version,
		Lines:      toLineInputs(req.Lines),
	})
	if err != nil {
		slog.WarnContext(ctx, "update purchase failed", "purchase_id", req.PurchaseID, "err", err)
		return nil, err
	}
	slog.InfoContext(ctx, "purchase updated",
		"purchase_id", detail.Order.ID, "version", detail.Order.Version, "total", detail.Order.Total.StringFixed(2))
	return &PurchaseResult{Order: detail.Order, Lines: detail.Lines}, nil
}

// DeletePurchase is not supported.
func (s *appService) DeletePurchase(ctx context.Context, purchaseID int) error {
	return s.purchases.Destroy(ctx, purchaseID)
}

func toLineInputs(lines []LineRequest) []core.LineInput {
	out := make([]core.LineInput, len(lines))
	for i, l := range lines {
		out[i] = core.LineInput{ItemID: l.ItemID, Quantity: l.Quantity}
	}
	return out
}
