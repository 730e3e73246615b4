package core

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Subtotal returns unitPrice × quantity.
func Subtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// BuildOrderLines prices each line with its current unit price.
func BuildOrderLines(lines []LineDetail) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLine{
			ItemID:    l.ItemID,
			ItemName:  l.ItemName,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  Subtotal(l.UnitPrice, l.Quantity),
		})
	}
	return out
}

// BuildOrders groups lines by purchase and produces exactly one Order per
// header, in header order. Headers without lines get a zero total; lines whose
// purchase is not among headers are ignored.
func BuildOrders(headers []PurchaseHeader, lines []LineDetail) []Order {
	totals := make(map[int]decimal.Decimal, len(headers))
	for _, l := range lines {
		totals[l.PurchaseID] = totals[l.PurchaseID].Add(Subtotal(l.UnitPrice, l.Quantity))
	}

	orders := make([]Order, 0, len(headers))
	for _, h := range headers {
		orders = append(orders, Order{
			ID:           h.ID,
			CustomerID:   h.CustomerID,
			CustomerName: h.CustomerName,
			Status:       h.Status,
			Version:      h.Version,
			CreatedAt:    h.CreatedAt,
			Total:        totals[h.ID],
		})
	}
	return orders
}

// OrderAggregator computes read-side order views from the store.
type OrderAggregator struct {
	store Store
}

// NewOrderAggregator constructs an OrderAggregator reading from store.
func NewOrderAggregator(store Store) *OrderAggregator {
	return &OrderAggregator{store: store}
}

// PurchaseReader is the read surface shared by Store and PurchaseTx.
type PurchaseReader interface {
	GetPurchase(ctx context.Context, purchaseID int) (*PurchaseHeader, error)
	ListLineDetails(ctx context.Context, purchaseIDs []int) ([]LineDetail, error)
}

// loadPurchase reads the header and the lines of one purchase once. The
// order total is derived from the returned lines. A nil order means the
// purchase does not exist.
func loadPurchase(ctx context.Context, src PurchaseReader, purchaseID int) (*Order, []LineDetail, error) {
	header, err := src.GetPurchase(ctx, purchaseID)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	lines, err := src.ListLineDetails(ctx, []int{purchaseID})
	if err != nil {
		return nil, nil, err
	}
	orders := BuildOrders([]PurchaseHeader{*header}, lines)
	return &orders[0], lines, nil
}

// BuildDetail returns the order and its priced lines from one read of src.
// An unknown purchase yields a nil Order and no lines.
func BuildDetail(ctx context.Context, src PurchaseReader, purchaseID int) (*PurchaseDetail, error) {
	order, lines, err := loadPurchase(ctx, src, purchaseID)
	if err != nil {
		return nil, err
	}
	return &PurchaseDetail{Order: order, Lines: BuildOrderLines(lines)}, nil
}

// ComputeOrder returns the order aggregate for one purchase, or nil when the
// purchase does not exist.
func (a *OrderAggregator) ComputeOrder(ctx context.Context, purchaseID int) (*Order, error) {
	order, _, err := loadPurchase(ctx, a.store, purchaseID)
	return order, err
}

// ComputeDetail returns the order and its lines, both derived from a single
// read of the line items.
func (a *OrderAggregator) ComputeDetail(ctx context.Context, purchaseID int) (*PurchaseDetail, error) {
	return BuildDetail(ctx, a.store, purchaseID)
}

// ComputeLines returns the priced lines of one purchase in insertion order.
// An unknown purchase yields no lines.
func (a *OrderAggregator) ComputeLines(ctx context.Context, purchaseID int) ([]OrderLine, error) {
	lines, err := a.store.ListLineDetails(ctx, []int{purchaseID})
	if err != nil {
		return nil, err
	}
	return BuildOrderLines(lines), nil
}

// ComputeOrders returns one page of order aggregates. Pages below 1 are
// treated as page 1; pages past the end are empty.
func (a *OrderAggregator) ComputeOrders(ctx context.Context, page int) (OrderPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := a.store.CountPurchases(ctx)
	if err != nil {
		return OrderPage{}, fmt.Errorf("count purchases: %w", err)
	}

	result := OrderPage{
		Orders:      []Order{},
		CurrentPage: page,
		PerPage:     PageSize,
		Total:       total,
		LastPage:    lastPage(total, PageSize),
	}
	if total == 0 {
		return result, nil
	}

	headers, err := a.store.ListPurchases(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return OrderPage{}, err
	}
	if len(headers) == 0 {
		return result, nil
	}

	ids := make([]int, len(headers))
	for i, h := range headers {
		ids[i] = h.ID
	}
	lines, err := a.store.ListLineDetails(ctx, ids)
	if err != nil {
		return OrderPage{}, err
	}
	result.Orders = BuildOrders(headers, lines)
	return result, nil
}

func lastPage(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
