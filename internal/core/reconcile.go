package core

import (
	"context"
	"fmt"
	"math"
)

// MaxLineQuantity is the largest quantity a single line can hold.
const MaxLineQuantity = math.MaxInt32

// ReconcilePlan is the set of line-item writes that brings a purchase in line
// with a submission.
type ReconcilePlan struct {
	Create []LineInput
	Update []LineInput
	Delete []int // item ids
}

// Empty reports whether the plan has no writes.
func (p ReconcilePlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// NormalizeLines validates a submission and folds it into at most one entry
// per item. Repeated items have their quantities summed and zero-quantity
// entries are dropped. First-seen order is kept.
func NormalizeLines(lines []LineInput) ([]LineInput, error) {
	out := make([]LineInput, 0, len(lines))
	pos := make(map[int]int, len(lines))

	for i, l := range lines {
		if l.ItemID <= 0 {
			return nil, validationErrorf(fmt.Sprintf("lines[%d].item_id", i), "must be a positive id")
		}
		if l.Quantity < 0 {
			return nil, validationErrorf(fmt.Sprintf("lines[%d].quantity", i), "must not be negative")
		}
		if l.Quantity > MaxLineQuantity {
			return nil, validationErrorf(fmt.Sprintf("lines[%d].quantity", i), "must not exceed %d", MaxLineQuantity)
		}
		if idx, ok := pos[l.ItemID]; ok {
			if l.Quantity > MaxLineQuantity-out[idx].Quantity {
				return nil, validationErrorf(fmt.Sprintf("lines[%d].quantity", i),
					"combined quantity for item %d exceeds %d", l.ItemID, MaxLineQuantity)
			}
			out[idx].Quantity += l.Quantity
			continue
		}
		pos[l.ItemID] = len(out)
		out = append(out, l)
	}

	kept := out[:0]
	for _, l := range out {
		if l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	return kept, nil
}

// PlanReconcile diffs the current lines against a normalized submission.
// Items only in the submission are created, items in both with a different
// quantity are updated, and items only on the purchase are deleted.
func PlanReconcile(current []LineItem, submitted []LineInput) ReconcilePlan {
	have := make(map[int]int, len(current))
	for _, li := range current {
		have[li.ItemID] = li.Quantity
	}

	var plan ReconcilePlan
	want := make(map[int]struct{}, len(submitted))
	for _, l := range submitted {
		want[l.ItemID] = struct{}{}
		qty, ok := have[l.ItemID]
		switch {
		case !ok:
			plan.Create = append(plan.Create, l)
		case qty != l.Quantity:
			plan.Update = append(plan.Update, l)
		}
	}
	for _, li := range current {
		if _, ok := want[li.ItemID]; !ok {
			plan.Delete = append(plan.Delete, li.ItemID)
		}
	}
	return plan
}

// Reconciler writes line-item changes for a single purchase.
type Reconciler struct{}

// Reconcile makes the purchase's persisted lines match lines. It must run
// inside tx; any error leaves the transaction to be rolled back by the caller.
func (Reconciler) Reconcile(ctx context.Context, tx PurchaseTx, purchaseID int, lines []LineInput) (ReconcilePlan, error) {
	submitted, err := NormalizeLines(lines)
	if err != nil {
		return ReconcilePlan{}, err
	}

	if _, err := tx.LockPurchase(ctx, purchaseID); err != nil {
		return ReconcilePlan{}, err
	}

	current, err := tx.LineItems(ctx, purchaseID)
	if err != nil {
		return ReconcilePlan{}, err
	}

	if err := validateItems(ctx, tx, submitted, current); err != nil {
		return ReconcilePlan{}, err
	}

	plan := PlanReconcile(current, submitted)

	for _, itemID := range plan.Delete {
		if err := tx.DeleteLineItem(ctx, purchaseID, itemID); err != nil {
			return ReconcilePlan{}, fmt.Errorf("delete line item %d: %w", itemID, err)
		}
	}
	for _, l := range plan.Update {
		if err := tx.UpdateLineItemQuantity(ctx, purchaseID, l.ItemID, l.Quantity); err != nil {
			return ReconcilePlan{}, fmt.Errorf("update line item %d: %w", l.ItemID, err)
		}
	}
	for _, l := range plan.Create {
		if err := tx.InsertLineItem(ctx, purchaseID, l.ItemID, l.Quantity); err != nil {
			return ReconcilePlan{}, fmt.Errorf("insert line item %d: %w", l.ItemID, err)
		}
	}
	return plan, nil
}

// validateItems checks that every submitted item exists. Items the purchase
// does not already hold must also be on sale; a retired item may stay on a
// purchase that has it.
func validateItems(ctx context.Context, tx PurchaseTx, lines []LineInput, current []LineItem) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]int, len(lines))
	for i, l := range lines {
		ids[i] = l.ItemID
	}
	items, err := tx.ItemsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve items: %w", err)
	}
	for _, l := range lines {
		item, ok := items[l.ItemID]
		if !ok {
			return validationErrorf("item_id", "item %d does not exist", l.ItemID)
		}
		if !item.IsSelling && !holds(current, l.ItemID) {
			return validationErrorf("item_id", "item %d is not on sale", l.ItemID)
		}
	}
	return nil
}

func holds(current []LineItem, itemID int) bool {
	for _, li := range current {
		if li.ItemID == itemID {
			return true
		}
	}
	return false
}
