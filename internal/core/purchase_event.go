package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseEventType names a committed purchase mutation.
type PurchaseEventType string

const (
	PurchaseCreated PurchaseEventType = "purchase.created"
	PurchaseUpdated PurchaseEventType = "purchase.updated"
)

// PurchaseEvent describes a committed purchase mutation for downstream consumers.
type PurchaseEvent struct {
	Type       PurchaseEventType `json:"type"`
	PurchaseID int               `json:"purchase_id"`
	CustomerID int               `json:"customer_id"`
	Status     PurchaseStatus    `json:"status"`
	Version    int               `json:"version"`
	Total      decimal.Decimal   `json:"total"`
	Lines      []LineInput       `json:"lines"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// EventPublisher delivers purchase events after their transaction commits.
type EventPublisher interface {
	PublishPurchaseEvent(ctx context.Context, event PurchaseEvent) error
}

func newPurchaseEvent(typ PurchaseEventType, detail *PurchaseDetail) PurchaseEvent {
	ev := PurchaseEvent{
		Type:       typ,
		PurchaseID: detail.Order.ID,
		CustomerID: detail.Order.CustomerID,
		Status:     detail.Order.Status,
		Version:    detail.Order.Version,
		Total:      detail.Order.Total,
		Lines:      make([]LineInput, 0, len(detail.Lines)),
		OccurredAt: time.Now().UTC(),
	}
	for _, l := range detail.Lines {
		ev.Lines = append(ev.Lines, LineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return ev
}
