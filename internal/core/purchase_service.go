package core

import (
	"context"
	"fmt"
	"log/slog"
)

type purchaseService struct {
	store      Store
	catalog    CatalogService
	aggregator *OrderAggregator
	reconciler Reconciler
	events     EventPublisher
}

// NewPurchaseService constructs a PurchaseService. events may be nil.
func NewPurchaseService(store Store, catalog CatalogService, events EventPublisher) PurchaseService {
	return &purchaseService{
		store:      store,
		catalog:    catalog,
		aggregator: NewOrderAggregator(store),
		events:     events,
	}
}

// List returns one page of orders in insertion order.
func (s *purchaseService) List(ctx context.Context, page int) (OrderPage, error) {
	return s.aggregator.ComputeOrders(ctx, page)
}

// NewForm returns the sellable items and customers for the create form.
func (s *purchaseService) NewForm(ctx context.Context) (PurchaseForm, error) {
	items, err := s.catalog.ListSellableItems(ctx)
	if err != nil {
		return PurchaseForm{}, fmt.Errorf("list sellable items: %w", err)
	}
	customers, err := s.catalog.ListCustomers(ctx)
	if err != nil {
		return PurchaseForm{}, fmt.Errorf("list customers: %w", err)
	}
	return PurchaseForm{Items: items, Customers: customers}, nil
}

// Create inserts the purchase header and all of its lines in one transaction.
// The customer must exist and at least one line must carry a positive quantity.
func (s *purchaseService) Create(ctx context.Context, in CreatePurchaseInput) (*PurchaseDetail, error) {
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return nil, validationErrorf("status", "unknown status %q", status)
	}
	if in.CustomerID <= 0 {
		return nil, validationErrorf("customer_id", "must be a positive id")
	}

	lines, err := NormalizeLines(in.Lines)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, validationErrorf("lines", "purchase must have at least one line with a positive quantity")
	}

	var detail *PurchaseDetail
	err = s.store.WithinTx(ctx, func(tx PurchaseTx) error {
		exists, err := tx.CustomerExists(ctx, in.CustomerID)
		if err != nil {
			return fmt.Errorf("validate customer: %w", err)
		}
		if !exists {
			return &NotFoundError{Entity: "customer", ID: in.CustomerID}
		}

		p, err := tx.InsertPurchase(ctx, in.CustomerID, status)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		if _, err := s.reconciler.Reconcile(ctx, tx, p.ID, lines); err != nil {
			return err
		}
		detail, err = BuildDetail(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, PurchaseCreated, detail)
	return detail, nil
}

// Show returns the order aggregate and its lines.
func (s *purchaseService) Show(ctx context.Context, purchaseID int) (*PurchaseDetail, error) {
	detail, err := s.aggregator.ComputeDetail(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if detail.Order == nil {
		detail.Lines = []OrderLine{}
	}
	return detail, nil
}

// Edit pads the sellable catalog with the purchase's current quantities.
func (s *purchaseService) Edit(ctx context.Context, purchaseID int) (*PurchaseEdit, error) {
	order, current, err := loadPurchase(ctx, s.store, purchaseID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return &PurchaseEdit{Lines: []EditLine{}}, nil
	}

	items, err := s.catalog.ListSellableItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sellable items: %w", err)
	}
	return &PurchaseEdit{Order: order, Lines: PadEditLines(items, current)}, nil
}

// PadEditLines returns one EditLine per catalog item, carrying the quantity
// found in lines or 0.
func PadEditLines(items []Item, lines []LineDetail) []EditLine {
	qty := make(map[int]int, len(lines))
	for _, l := range lines {
		qty[l.ItemID] = l.Quantity
	}
	out := make([]EditLine, 0, len(items))
	for _, it := range items {
		out = append(out, EditLine{
			ItemID:    it.ID,
			ItemName:  it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  qty[it.ID],
		})
	}
	return out
}

// Update writes the status and reconciles the lines in one transaction.
// A non-zero Version must match the stored version.
func (s *purchaseService) Update(ctx context.Context, in UpdatePurchaseInput) (*PurchaseDetail, error) {
	if in.Status != "" && !in.Status.Valid() {
		return nil, validationErrorf("status", "unknown status %q", in.Status)
	}
	if in.Version < 0 {
		return nil, validationErrorf("version", "must not be negative")
	}

	var detail *PurchaseDetail
	err := s.store.WithinTx(ctx, func(tx PurchaseTx) error {
		p, err := tx.LockPurchase(ctx, in.PurchaseID)
		if err != nil {
			return err
		}
		if in.Version != 0 && in.Version != p.Version {
			return &ConflictError{PurchaseID: p.ID, Expected: in.Version, Actual: p.Version}
		}

		status := in.Status
		if status == "" {
			status = p.Status
		}
		if _, err := tx.UpdatePurchase(ctx, p.ID, status); err != nil {
			return fmt.Errorf("update purchase %d: %w", p.ID, err)
		}

		if _, err := s.reconciler.Reconcile(ctx, tx, p.ID, in.Lines); err != nil {
			return err
		}
		detail, err = BuildDetail(ctx, tx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, PurchaseUpdated, detail)
	return detail, nil
}

// Destroy is not supported.
func (s *purchaseService) Destroy(ctx context.Context, purchaseID int) error {
	return fmt.Errorf("destroy purchase %d: %w", purchaseID, ErrNotImplemented)
}

// publish runs after commit; delivery failures are logged, the mutation stands.
func (s *purchaseService) publish(ctx context.Context, typ PurchaseEventType, detail *PurchaseDetail) {
	if s.events == nil || detail == nil || detail.Order == nil {
		return
	}
	if err := s.events.PublishPurchaseEvent(ctx, newPurchaseEvent(typ, detail)); err != nil {
		slog.ErrorContext(ctx, "publish purchase event failed",
			"type", typ, "purchase_id", detail.Order.ID, "err", err)
	}
}
