package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"purchasing-admin/internal/app"
	"purchasing-admin/internal/core"
	"purchasing-admin/internal/core/coretest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_NewThenEdit(t *testing.T) {
	store := coretest.NewStore()
	customer := store.AddCustomer("Alice")
	tea := store.AddItem("Tea", "3", true)
	rice := store.AddItem("Rice", "7", true)
	catalog := core.NewCatalogService(store, nil)
	svc := app.NewAppService(catalog, core.NewPurchaseService(store, catalog, nil))
	ctx := context.Background()

	script := strings.Join([]string{
		"/new",
		fmt.Sprint(customer),
		fmt.Sprintf("%d 2", tea),
		"bogus",
		"done",
		"placed",
		"/exit",
	}, "\n") + "\n"

	var out bytes.Buffer
	Run(ctx, svc, bufio.NewReader(strings.NewReader(script)), &out)
	assert.Contains(t, out.String(), "Purchase created")
	assert.Contains(t, out.String(), "Invalid format")
	assert.Contains(t, out.String(), "Goodbye!")

	list, err := svc.ListPurchases(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list.Page.Orders, 1)
	id := list.Page.Orders[0].ID
	assert.Equal(t, "6", list.Page.Orders[0].Total.String())

	script = strings.Join([]string{
		fmt.Sprintf("/edit %d", id),
		fmt.Sprintf("%d 0", tea),
		fmt.Sprintf("%d 1", rice),
		"done",
		"",
	}, "\n") + "\n"
	out.Reset()
	Run(ctx, svc, bufio.NewReader(strings.NewReader(script)), &out)
	assert.Contains(t, out.String(), "updated (version 2)")

	shown, err := svc.GetPurchase(ctx, id)
	require.NoError(t, err)
	require.Len(t, shown.Lines, 1)
	assert.Equal(t, rice, shown.Lines[0].ItemID)
	assert.Equal(t, core.StatusPlaced, shown.Order.Status)
}

func TestRun_EditKeepsRetiredLines(t *testing.T) {
	store := coretest.NewStore()
	customer := store.AddCustomer("Alice")
	tea := store.AddItem("Tea", "3", true)
	rice := store.AddItem("Rice", "7", true)
	catalog := core.NewCatalogService(store, nil)
	svc := app.NewAppService(catalog, core.NewPurchaseService(store, catalog, nil))
	ctx := context.Background()

	created, err := svc.CreatePurchase(ctx, app.CreatePurchaseRequest{
		CustomerID: customer,
		Lines: []app.LineRequest{
			{ItemID: tea, Quantity: 1},
			{ItemID: rice, Quantity: 2},
		},
	})
	require.NoError(t, err)
	id := created.Order.ID
	store.SetSelling(rice, false)

	script := strings.Join([]string{
		fmt.Sprintf("/edit %d", id),
		fmt.Sprintf("%d 5", tea),
		"done",
		"",
	}, "\n") + "\n"
	var out bytes.Buffer
	Run(ctx, svc, bufio.NewReader(strings.NewReader(script)), &out)
	assert.Contains(t, out.String(), "no longer on sale")
	assert.Contains(t, out.String(), "updated (version 2)")

	shown, err := svc.GetPurchase(ctx, id)
	require.NoError(t, err)
	qty := map[int]int{}
	for _, l := range shown.Lines {
		qty[l.ItemID] = l.Quantity
	}
	assert.Equal(t, map[int]int{tea: 5, rice: 2}, qty)
	assert.Equal(t, "29", shown.Order.Total.String())
}

func TestDispatch_Errors(t *testing.T) {
	store := coretest.NewStore()
	catalog := core.NewCatalogService(store, nil)
	svc := app.NewAppService(catalog, core.NewPurchaseService(store, catalog, nil))
	ctx := context.Background()
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader(""))

	assert.ErrorIs(t, dispatch(ctx, svc, r, &out, "/delete 1"), core.ErrNotImplemented)
	err := dispatch(ctx, svc, r, &out, "/delete 0")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotImplemented)
	assert.Contains(t, err.Error(), "invalid purchase ID")
	assert.Error(t, dispatch(ctx, svc, r, &out, "/edit"))
	assert.Error(t, dispatch(ctx, svc, r, &out, "/new"), "no customers")
	assert.ErrorIs(t, dispatch(ctx, svc, r, &out, "/quit"), errExit)

	require.NoError(t, dispatch(ctx, svc, r, &out, "/frobnicate"))
	assert.Contains(t, out.String(), "Unknown command")

	out.Reset()
	require.NoError(t, dispatch(ctx, svc, r, &out, "/help"))
	assert.Contains(t, out.String(), "/delete <id>")
}
