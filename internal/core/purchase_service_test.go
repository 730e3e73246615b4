package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"purchasing-admin/internal/core"
	"purchasing-admin/internal/core/coretest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *coretest.Store
	svc      core.PurchaseService
	events   *recordingPublisher
	customer int
	itemA    int // 10.00
	itemB    int // 5.00
	itemC    int // 2.50
	retired  int // not on sale
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := coretest.NewStore()
	f := &fixture{
		store:    store,
		events:   &recordingPublisher{},
		customer: store.AddCustomer("Alice"),
		itemA:    store.AddItem("Item A", "10", true),
		itemB:    store.AddItem("Item B", "5", true),
		itemC:    store.AddItem("Item C", "2.50", true),
		retired:  store.AddItem("Retired", "99", false),
	}
	f.svc = core.NewPurchaseService(store, core.NewCatalogService(store, nil), f.events)
	return f
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.PurchaseEvent
	err    error
}

func (p *recordingPublisher) PublishPurchaseEvent(ctx context.Context, ev core.PurchaseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func quantities(lines []core.OrderLine) map[int]int {
	out := map[int]int{}
	for _, l := range lines {
		out[l.ItemID] = l.Quantity
	}
	return out
}

func TestPurchase_CreateThenUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Status:     core.StatusPlaced,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 2}, {ItemID: f.itemB, Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, created.Order)
	assertDecimal(t, "25", created.Order.Total)
	assert.Equal(t, "Alice", created.Order.CustomerName)
	assert.Equal(t, core.StatusPlaced, created.Order.Status)
	assert.Equal(t, 1, created.Order.Version)
	require.Len(t, created.Lines, 2)
	assert.Equal(t, f.itemA, created.Lines[0].ItemID)
	assertDecimal(t, "20", created.Lines[0].Subtotal)

	updated, err := f.svc.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: created.Order.ID,
		Status:     core.StatusFulfilled,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 1}},
	})
	require.NoError(t, err)
	assertDecimal(t, "10", updated.Order.Total)
	assert.Equal(t, core.StatusFulfilled, updated.Order.Status)
	assert.Equal(t, 2, updated.Order.Version)
	assert.Equal(t, map[int]int{f.itemA: 1}, quantities(updated.Lines))

	require.Len(t, f.events.events, 2)
	assert.Equal(t, core.PurchaseCreated, f.events.events[0].Type)
	assert.Equal(t, core.PurchaseUpdated, f.events.events[1].Type)
	assertDecimal(t, "10", f.events.events[1].Total)
}

func TestPurchase_CreateDefaultsToDraftAndMergesDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	detail, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines: []core.LineInput{
			{ItemID: f.itemB, Quantity: 1},
			{ItemID: f.itemA, Quantity: 1},
			{ItemID: f.itemB, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusDraft, detail.Order.Status)
	require.Len(t, detail.Lines, 2)
	assert.Equal(t, f.itemB, detail.Lines[0].ItemID)
	assert.Equal(t, 3, detail.Lines[0].Quantity)
	assertDecimal(t, "25", detail.Order.Total)
}

func TestPurchase_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		in       core.CreatePurchaseInput
		notFound bool
	}{
		{"no lines", core.CreatePurchaseInput{CustomerID: f.customer}, false},
		{"only zero quantities", core.CreatePurchaseInput{CustomerID: f.customer, Lines: []core.LineInput{{ItemID: f.itemA}}}, false},
		{"unknown status", core.CreatePurchaseInput{CustomerID: f.customer, Status: "shipped", Lines: []core.LineInput{{ItemID: f.itemA, Quantity: 1}}}, false},
		{"unknown item", core.CreatePurchaseInput{CustomerID: f.customer, Lines: []core.LineInput{{ItemID: 9999, Quantity: 1}}}, false},
		{"item not on sale", core.CreatePurchaseInput{CustomerID: f.customer, Lines: []core.LineInput{{ItemID: f.retired, Quantity: 1}}}, false},
		{"unknown customer", core.CreatePurchaseInput{CustomerID: 9999, Lines: []core.LineInput{{ItemID: f.itemA, Quantity: 1}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.in)
			require.Error(t, err)
			if tt.notFound {
				assert.True(t, core.IsNotFound(err), "expected NotFoundError, got %v", err)
				return
			}
			var ve *core.ValidationError
			assert.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
		})
	}

	n, err := f.store.CountPurchases(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "failed creates must not leave purchases behind")
	assert.Empty(t, f.events.events)
}

func TestPurchase_ShowWithoutLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, core.UpdatePurchaseInput{PurchaseID: created.Order.ID})
	require.NoError(t, err)

	detail, err := f.svc.Show(ctx, created.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Order)
	assertDecimal(t, "0", detail.Order.Total)
	assert.Empty(t, detail.Lines)
	assert.Equal(t, core.StatusDraft, detail.Order.Status, "empty status keeps the current one")
}

func TestPurchase_ShowUnknownIsEmpty(t *testing.T) {
	f := newFixture(t)

	detail, err := f.svc.Show(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, detail.Order)
	assert.Empty(t, detail.Lines)
}

func TestPurchase_TotalsFollowCurrentPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 3}},
	})
	require.NoError(t, err)
	assertDecimal(t, "30", created.Order.Total)

	f.store.SetPrice(f.itemA, "12.50")

	detail, err := f.svc.Show(ctx, created.Order.ID)
	require.NoError(t, err)
	assertDecimal(t, "37.50", detail.Order.Total)
}

func TestPurchase_EditPadsSellableCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemC, Quantity: 7}},
	})
	require.NoError(t, err)

	edit, err := f.svc.Edit(ctx, created.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, edit.Order)
	assert.Equal(t, f.customer, edit.Order.CustomerID)
	require.Len(t, edit.Lines, 3, "one row per sellable item")

	got := map[int]int{}
	for _, l := range edit.Lines {
		got[l.ItemID] = l.Quantity
	}
	assert.Equal(t, map[int]int{f.itemA: 0, f.itemB: 0, f.itemC: 7}, got)

	missing, err := f.svc.Edit(ctx, 4242)
	require.NoError(t, err)
	assert.Nil(t, missing.Order)
	assert.Empty(t, missing.Lines)
}

func TestPadEditLines(t *testing.T) {
	items := []core.Item{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}
	lines := []core.LineDetail{{ItemID: 2, Quantity: 5}, {ItemID: 3, Quantity: 1}}

	got := core.PadEditLines(items, lines)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Quantity)
	assert.Equal(t, 5, got[1].Quantity)
}

func TestPurchase_UpdateIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 2}, {ItemID: f.itemB, Quantity: 1}},
	})
	require.NoError(t, err)
	id := created.Order.ID
	before := f.store.Lines(id)

	boom := errors.New("disk full")
	f.store.FailInsertLine = func(purchaseID, itemID int) error {
		if itemID == f.itemC {
			return boom
		}
		return nil
	}

	_, err = f.svc.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: id,
		Status:     core.StatusCancelled,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 9}, {ItemID: f.itemC, Quantity: 1}},
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, before, f.store.Lines(id))
	p, ok := f.store.Purchase(id)
	require.True(t, ok)
	assert.Equal(t, core.StatusDraft, p.Status)
	assert.Equal(t, 1, p.Version)
	assert.Len(t, f.events.events, 1, "no event for a rolled back update")
}

func TestPurchase_CommitFailureIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.FailCommit = func() error { return errors.New("connection reset") }

	_, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 1}},
	})
	var te *core.TransactionError
	require.True(t, errors.As(err, &te), "expected TransactionError, got %v", err)
	assert.Equal(t, "commit", te.Op)

	n, err := f.store.CountPurchases(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPurchase_UpdateVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 1}},
	})
	require.NoError(t, err)
	id := created.Order.ID

	_, err = f.svc.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: id, Version: 1, Lines: []core.LineInput{{ItemID: f.itemA, Quantity: 2}},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: id, Version: 1, Lines: []core.LineInput{{ItemID: f.itemB, Quantity: 1}},
	})
	var ce *core.ConflictError
	require.True(t, errors.As(err, &ce), "expected ConflictError, got %v", err)
	assert.Equal(t, 2, ce.Actual)

	detail, err := f.svc.Show(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{f.itemA: 2}, quantities(detail.Lines))
}

func TestPurchase_UpdateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, core.UpdatePurchaseInput{PurchaseID: 777})
	assert.True(t, core.IsNotFound(err), "expected NotFoundError, got %v", err)

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, core.UpdatePurchaseInput{PurchaseID: created.Order.ID, Status: "lost"})
	var ve *core.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: created.Order.ID,
		Lines:      []core.LineInput{{ItemID: f.retired, Quantity: 1}},
	})
	assert.True(t, errors.As(err, &ve))
}

func TestPurchase_PublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	detail, err := f.svc.Create(context.Background(), core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotNil(t, detail.Order)
}

func TestPurchase_ListAndNewForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, qty := range []int{1, 2} {
		_, err := f.svc.Create(ctx, core.CreatePurchaseInput{
			CustomerID: f.customer,
			Lines:      []core.LineInput{{ItemID: f.itemB, Quantity: qty}},
		})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assertDecimal(t, "5", page.Orders[0].Total)
	assertDecimal(t, "10", page.Orders[1].Total)

	form, err := f.svc.NewForm(ctx)
	require.NoError(t, err)
	assert.Len(t, form.Items, 3)
	assert.Len(t, form.Customers, 1)
}

func TestPurchase_DestroyNotImplemented(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Destroy(context.Background(), 1)
	assert.ErrorIs(t, err, core.ErrNotImplemented)
}

func TestPurchase_CreateIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	boom := errors.New("disk full")
	f.store.FailInsertLine = func(purchaseID, itemID int) error {
		if itemID == f.itemB {
			return boom
		}
		return nil
	}

	_, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 2}, {ItemID: f.itemB, Quantity: 1}},
	})
	require.ErrorIs(t, err, boom)

	n, err := f.store.CountPurchases(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "header must roll back with its lines")
	assert.Empty(t, f.events.events)
}

// unreadableStore fails every read made outside a transaction.
type unreadableStore struct {
	*coretest.Store
}

func (s unreadableStore) GetPurchase(ctx context.Context, purchaseID int) (*core.PurchaseHeader, error) {
	return nil, errors.New("read replica timeout")
}

func (s unreadableStore) ListLineDetails(ctx context.Context, purchaseIDs []int) ([]core.LineDetail, error) {
	return nil, errors.New("read replica timeout")
}

func TestPurchase_MutationsReportCommittedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := unreadableStore{Store: f.store}
	svc := core.NewPurchaseService(store, core.NewCatalogService(store, nil), f.events)

	created, err := svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NotNil(t, created.Order)
	assertDecimal(t, "20", created.Order.Total)
	assert.Equal(t, "Alice", created.Order.CustomerName)

	updated, err := svc.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: created.Order.ID,
		Version:    1,
		Lines:      []core.LineInput{{ItemID: f.itemB, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Order.Version)
	assertDecimal(t, "15", updated.Order.Total)
	assert.Equal(t, map[int]int{f.itemB: 3}, quantities(updated.Lines))

	n, err := f.store.CountPurchases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, f.events.events, 2)
}

// countingStore counts line-detail reads.
type countingStore struct {
	*coretest.Store
	lineReads int
}

func (s *countingStore) ListLineDetails(ctx context.Context, purchaseIDs []int) ([]core.LineDetail, error) {
	s.lineReads++
	return s.Store.ListLineDetails(ctx, purchaseIDs)
}

func TestPurchase_ShowReadsLinesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 1}, {ItemID: f.itemC, Quantity: 4}},
	})
	require.NoError(t, err)

	store := &countingStore{Store: f.store}
	svc := core.NewPurchaseService(store, core.NewCatalogService(store, nil), nil)

	detail, err := svc.Show(ctx, created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.lineReads)

	sum := decimal.Zero
	for _, l := range detail.Lines {
		sum = sum.Add(l.Subtotal)
	}
	assertDecimal(t, sum.String(), detail.Order.Total)

	store.lineReads = 0
	_, err = svc.Edit(ctx, created.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.lineReads)
}

func TestPurchase_RetiredItemMayStayOnPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, core.CreatePurchaseInput{
		CustomerID: f.customer,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 1}, {ItemID: f.itemB, Quantity: 2}},
	})
	require.NoError(t, err)
	f.store.SetSelling(f.itemB, false)

	updated, err := f.svc.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: created.Order.ID,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 5}, {ItemID: f.itemB, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[int]int{f.itemA: 5, f.itemB: 3}, quantities(updated.Lines))

	_, err = f.svc.Update(ctx, core.UpdatePurchaseInput{
		PurchaseID: created.Order.ID,
		Lines:      []core.LineInput{{ItemID: f.itemA, Quantity: 5}, {ItemID: f.retired, Quantity: 1}},
	})
	var ve *core.ValidationError
	assert.True(t, errors.As(err, &ve), "a retired item cannot be added, got %v", err)
}
