package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"purchasing-admin/internal/app"
	"purchasing-admin/internal/core"
)

const usage = "Available: items, customers, list [page], show <id>, edit <id>, create, update <id>"

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name.
// create and update read a JSON body from in: {customer_id, status, version, lines: [{item_id, quantity}]}.
// update requires lines, the complete new line set.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("no command given\n" + usage)
	}

	switch args[0] {
	case "items":
		result, err := svc.ListItems(ctx)
		if err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}
		printItems(out, result.Items)

	case "customers":
		result, err := svc.ListCustomers(ctx)
		if err != nil {
			return fmt.Errorf("failed to list customers: %w", err)
		}
		printCustomers(out, result.Customers)

	case "list", "ls":
		page := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid page %q", args[1])
			}
			page = n
		}
		result, err := svc.ListPurchases(ctx, page)
		if err != nil {
			return fmt.Errorf("failed to list purchases: %w", err)
		}
		printOrderPage(out, result.Page)

	case "show":
		id, err := idArg(args, "show")
		if err != nil {
			return err
		}
		result, err := svc.GetPurchase(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load purchase: %w", err)
		}
		if result.Order == nil {
			return &core.NotFoundError{Entity: "purchase", ID: id}
		}
		printPurchase(out, result)

	case "edit":
		id, err := idArg(args, "edit")
		if err != nil {
			return err
		}
		result, err := svc.EditPurchase(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load purchase: %w", err)
		}
		if result.Order == nil {
			return &core.NotFoundError{Entity: "purchase", ID: id}
		}
		printEdit(out, result)

	case "create":
		body, err := readBody(in)
		if err != nil {
			return err
		}
		result, err := svc.CreatePurchase(ctx, app.CreatePurchaseRequest{
			CustomerID: body.CustomerID,
			Status:     body.Status,
			Lines:      body.Lines,
		})
		if err != nil {
			return fmt.Errorf("create failed: %w", err)
		}
		printPurchase(out, result)

	case "update":
		id, err := idArg(args, "update")
		if err != nil {
			return err
		}
		body, err := readBody(in)
		if err != nil {
			return err
		}
		if !body.HasLines {
			return &core.ValidationError{Field: "lines", Message: "is required; send [] to remove every line"}
		}
		result, err := svc.UpdatePurchase(ctx, app.UpdatePurchaseRequest{
			PurchaseID: id,
			Status:     body.Status,
			Version:    body.Version,
			Lines:      body.Lines,
		})
		if err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		printPurchase(out, result)

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
	return nil
}

type lineJSON struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

type bodyJSON struct {
	CustomerID int         `json:"customer_id"`
	Status     string      `json:"status"`
	Version    int         `json:"version"`
	Lines      *[]lineJSON `json:"lines"`
}

type purchaseInput struct {
	CustomerID int
	Status     string
	Version    int
	Lines      []app.LineRequest
	HasLines   bool
}

func readBody(in io.Reader) (purchaseInput, error) {
	var b bodyJSON
	if err := json.NewDecoder(in).Decode(&b); err != nil {
		return purchaseInput{}, fmt.Errorf("invalid JSON: %w", err)
	}
	p := purchaseInput{CustomerID: b.CustomerID, Status: b.Status, Version: b.Version}
	if b.Lines == nil {
		return p, nil
	}
	p.HasLines = true
	p.Lines = make([]app.LineRequest, 0, len(*b.Lines))
	for _, l := range *b.Lines {
		p.Lines = append(p.Lines, app.LineRequest{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return p, nil
}

func idArg(args []string, cmd string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: app %s <purchase-id>", cmd)
	}
	id, err := strconv.Atoi(args[1])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid purchase ID %q", args[1])
	}
	return id, nil
}

func printItems(out io.Writer, items []core.Item) {
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-6s %-38s %14s\n", "ID", "NAME", "PRICE")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, it := range items {
		fmt.Fprintf(out, "  %-6d %-38s %14s\n", it.ID, it.Name, it.UnitPrice.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}

func printCustomers(out io.Writer, customers []core.Customer) {
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-6s %-30s %-22s\n", "ID", "NAME", "TEL")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, c := range customers {
		fmt.Fprintf(out, "  %-6d %-30s %-22s\n", c.ID, c.Name, c.Tel)
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}

func printOrderPage(out io.Writer, page core.OrderPage) {
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  PURCHASES  page %d of %d  (%d total)\n", page.CurrentPage, page.LastPage, page.Total)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  %-6s %-24s %-10s %-12s %14s\n", "ID", "CUSTOMER", "STATUS", "DATE", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, o := range page.Orders {
		fmt.Fprintf(out, "  %-6d %-24s %-10s %-12s %14s\n",
			o.ID, o.CustomerName, o.Status, o.CreatedAt.Format("2006-01-02"), o.Total.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printPurchase(out io.Writer, result *app.PurchaseResult) {
	o := result.Order
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  PURCHASE #%d  (%s, v%d)\n", o.ID, o.Status, o.Version)
	fmt.Fprintf(out, "  Customer : %s\n", o.CustomerName)
	fmt.Fprintf(out, "  Date     : %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintf(out, "  %-30s %12s %8s %16s\n", "ITEM", "PRICE", "QTY", "SUBTOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, l := range result.Lines {
		fmt.Fprintf(out, "  %-30s %12s %8d %16s\n", l.ItemName, l.UnitPrice.StringFixed(2), l.Quantity, l.Subtotal.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("-", 72))
	fmt.Fprintf(out, "  %-52s %16s\n", "TOTAL", o.Total.StringFixed(2))
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printEdit(out io.Writer, result *app.PurchaseEditResult) {
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  EDIT PURCHASE #%d  (%s, v%d)\n", result.Order.ID, result.Order.Status, result.Order.Version)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-6s %-30s %12s %8s\n", "ID", "ITEM", "PRICE", "QTY")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, l := range result.Lines {
		fmt.Fprintf(out, "  %-6d %-30s %12s %8d\n", l.ItemID, l.ItemName, l.UnitPrice.StringFixed(2), l.Quantity)
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}
