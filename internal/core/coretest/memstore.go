// Package coretest provides an in-memory core.Store for tests.
package coretest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"purchasing-admin/internal/core"

	"github.com/shopspring/decimal"
)

// Store is a mutex-guarded in-memory core.Store. WithinTx works on a copy of
// the state and swaps it in only on success, so a failed transaction leaves
// nothing behind.
type Store struct {
	mu    sync.Mutex
	state state

	// FailInsertLine, when set, is consulted before every line insert.
	FailInsertLine func(purchaseID, itemID int) error
	// FailCommit, when set, makes every commit fail with the returned error.
	FailCommit func() error
}

type state struct {
	items     map[int]core.Item
	customers map[int]core.Customer
	purchases map[int]core.Purchase
	lines     map[int]core.LineItem // by line id
	nextID    int
	now       time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{state: state{
		items:     map[int]core.Item{},
		customers: map[int]core.Customer{},
		purchases: map[int]core.Purchase{},
		lines:     map[int]core.LineItem{},
		now:       time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
	}}
}

// AddItem registers a catalog item priced at price and returns its id.
func (s *Store) AddItem(name, price string, selling bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.state.next()
	s.state.items[id] = core.Item{ID: id, Name: name, UnitPrice: decimal.RequireFromString(price), IsSelling: selling}
	return id
}

// SetPrice changes an item's current price.
func (s *Store) SetPrice(itemID int, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.state.items[itemID]
	it.UnitPrice = decimal.RequireFromString(price)
	s.state.items[itemID] = it
}

// SetSelling puts an item on sale or retires it.
func (s *Store) SetSelling(itemID int, selling bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.state.items[itemID]
	it.IsSelling = selling
	s.state.items[itemID] = it
}

// AddCustomer registers a customer and returns its id.
func (s *Store) AddCustomer(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.state.next()
	s.state.customers[id] = core.Customer{ID: id, Name: name}
	return id
}

// Lines returns the persisted lines of a purchase in insertion order.
func (s *Store) Lines(purchaseID int) []core.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.linesOf(purchaseID)
}

// Purchase returns the stored header.
func (s *Store) Purchase(purchaseID int) (core.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.purchases[purchaseID]
	return p, ok
}

func (st *state) next() int {
	st.nextID++
	return st.nextID
}

func (st *state) tick() time.Time {
	st.now = st.now.Add(time.Second)
	return st.now
}

func (st *state) clone() state {
	c := *st
	c.items = make(map[int]core.Item, len(st.items))
	for k, v := range st.items {
		c.items[k] = v
	}
	c.customers = make(map[int]core.Customer, len(st.customers))
	for k, v := range st.customers {
		c.customers[k] = v
	}
	c.purchases = make(map[int]core.Purchase, len(st.purchases))
	for k, v := range st.purchases {
		c.purchases[k] = v
	}
	c.lines = make(map[int]core.LineItem, len(st.lines))
	for k, v := range st.lines {
		c.lines[k] = v
	}
	return c
}

func (st *state) linesOf(purchaseID int) []core.LineItem {
	var out []core.LineItem
	for _, li := range st.lines {
		if li.PurchaseID == purchaseID {
			out = append(out, li)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *state) header(p core.Purchase) core.PurchaseHeader {
	return core.PurchaseHeader{Purchase: p, CustomerName: st.customers[p.CustomerID].Name}
}

func (s *Store) ListSellableItems(ctx context.Context) ([]core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []core.Item{}
	for _, it := range s.state.items {
		if it.IsSelling {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) GetItem(ctx context.Context, itemID int) (*core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.state.items[itemID]
	if !ok {
		return nil, &core.NotFoundError{Entity: "item", ID: itemID}
	}
	return &it, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	customers := []core.Customer{}
	for _, c := range s.state.customers {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}

func (s *Store) CountPurchases(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.purchases), nil
}

func (s *Store) ListPurchases(ctx context.Context, limit, offset int) ([]core.PurchaseHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.state.purchases))
	for id := range s.state.purchases {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var out []core.PurchaseHeader
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, s.state.header(s.state.purchases[ids[i]]))
	}
	return out, nil
}

func (s *Store) GetPurchase(ctx context.Context, purchaseID int) (*core.PurchaseHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.getPurchase(purchaseID)
}

func (s *Store) ListLineDetails(ctx context.Context, purchaseIDs []int) ([]core.LineDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.lineDetails(purchaseIDs), nil
}

func (st *state) getPurchase(purchaseID int) (*core.PurchaseHeader, error) {
	p, ok := st.purchases[purchaseID]
	if !ok {
		return nil, &core.NotFoundError{Entity: "purchase", ID: purchaseID}
	}
	h := st.header(p)
	return &h, nil
}

func (st *state) lineDetails(purchaseIDs []int) []core.LineDetail {
	ids := append([]int(nil), purchaseIDs...)
	sort.Ints(ids)

	var out []core.LineDetail
	for _, pid := range ids {
		for _, li := range st.linesOf(pid) {
			it := st.items[li.ItemID]
			out = append(out, core.LineDetail{
				LineID:     li.ID,
				PurchaseID: li.PurchaseID,
				ItemID:     li.ItemID,
				ItemName:   it.Name,
				UnitPrice:  it.UnitPrice,
				Quantity:   li.Quantity,
			})
		}
	}
	return out
}

// WithinTx holds the store lock for the whole transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx core.PurchaseTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&memTx{st: &work, store: s}); err != nil {
		return err
	}
	if s.FailCommit != nil {
		if err := s.FailCommit(); err != nil {
			return &core.TransactionError{Op: "commit", Err: err}
		}
	}
	s.state = work
	return nil
}

type memTx struct {
	st    *state
	store *Store
}

func (t *memTx) ItemsByIDs(ctx context.Context, ids []int) (map[int]core.Item, error) {
	out := make(map[int]core.Item, len(ids))
	for _, id := range ids {
		if it, ok := t.st.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func (t *memTx) CustomerExists(ctx context.Context, customerID int) (bool, error) {
	_, ok := t.st.customers[customerID]
	return ok, nil
}

func (t *memTx) InsertPurchase(ctx context.Context, customerID int, status core.PurchaseStatus) (*core.Purchase, error) {
	now := t.st.tick()
	p := core.Purchase{
		ID:         t.st.next(),
		CustomerID: customerID,
		Status:     status,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	t.st.purchases[p.ID] = p
	return &p, nil
}

func (t *memTx) LockPurchase(ctx context.Context, purchaseID int) (*core.Purchase, error) {
	p, ok := t.st.purchases[purchaseID]
	if !ok {
		return nil, &core.NotFoundError{Entity: "purchase", ID: purchaseID}
	}
	return &p, nil
}

func (t *memTx) UpdatePurchase(ctx context.Context, purchaseID int, status core.PurchaseStatus) (*core.Purchase, error) {
	p, ok := t.st.purchases[purchaseID]
	if !ok {
		return nil, &core.NotFoundError{Entity: "purchase", ID: purchaseID}
	}
	p.Status = status
	p.Version++
	p.UpdatedAt = t.st.tick()
	t.st.purchases[purchaseID] = p
	return &p, nil
}

func (t *memTx) GetPurchase(ctx context.Context, purchaseID int) (*core.PurchaseHeader, error) {
	return t.st.getPurchase(purchaseID)
}

func (t *memTx) ListLineDetails(ctx context.Context, purchaseIDs []int) ([]core.LineDetail, error) {
	return t.st.lineDetails(purchaseIDs), nil
}

func (t *memTx) LineItems(ctx context.Context, purchaseID int) ([]core.LineItem, error) {
	return t.st.linesOf(purchaseID), nil
}

func (t *memTx) InsertLineItem(ctx context.Context, purchaseID, itemID, quantity int) error {
	if t.store.FailInsertLine != nil {
		if err := t.store.FailInsertLine(purchaseID, itemID); err != nil {
			return err
		}
	}
	if quantity < 1 {
		return fmt.Errorf("quantity %d violates check constraint", quantity)
	}
	for _, li := range t.st.lines {
		if li.PurchaseID == purchaseID && li.ItemID == itemID {
			return fmt.Errorf("duplicate line for item %d on purchase %d", itemID, purchaseID)
		}
	}
	id := t.st.next()
	t.st.lines[id] = core.LineItem{ID: id, PurchaseID: purchaseID, ItemID: itemID, Quantity: quantity}
	return nil
}

func (t *memTx) UpdateLineItemQuantity(ctx context.Context, purchaseID, itemID, quantity int) error {
	for id, li := range t.st.lines {
		if li.PurchaseID == purchaseID && li.ItemID == itemID {
			li.Quantity = quantity
			t.st.lines[id] = li
			return nil
		}
	}
	return fmt.Errorf("line item for item %d not found on purchase %d", itemID, purchaseID)
}

func (t *memTx) DeleteLineItem(ctx context.Context, purchaseID, itemID int) error {
	for id, li := range t.st.lines {
		if li.PurchaseID == purchaseID && li.ItemID == itemID {
			delete(t.st.lines, id)
		}
	}
	return nil
}
