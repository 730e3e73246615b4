package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"purchasing-admin/internal/adapters/cli"
	"purchasing-admin/internal/app"
	"purchasing-admin/internal/core"
)

// newPurchaseWizard runs an interactive purchase creation session.
func newPurchaseWizard(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) error {
	form, err := svc.NewPurchaseForm(ctx)
	if err != nil {
		return err
	}
	if len(form.Form.Customers) == 0 {
		return fmt.Errorf("no customers exist yet")
	}

	fmt.Fprintln(out, "Customers:")
	for _, c := range form.Form.Customers {
		fmt.Fprintf(out, "  %-6d %s\n", c.ID, c.Name)
	}
	fmt.Fprint(out, "Customer ID: ")
	customerID, err := strconv.Atoi(readLine(reader))
	if err != nil {
		return fmt.Errorf("invalid customer ID")
	}

	fmt.Fprintln(out, "Items on sale:")
	for _, it := range form.Form.Items {
		fmt.Fprintf(out, "  %-6d %-30s %12s\n", it.ID, it.Name, it.UnitPrice.StringFixed(2))
	}
	lines, ok := readLines(reader, out)
	if !ok {
		fmt.Fprintln(out, "Purchase creation cancelled.")
		return nil
	}
	if len(lines) == 0 {
		fmt.Fprintln(out, "No lines entered. Purchase not created.")
		return nil
	}

	fmt.Fprint(out, "Status [draft]: ")
	status := strings.ToLower(readLine(reader))

	result, err := svc.CreatePurchase(ctx, app.CreatePurchaseRequest{
		CustomerID: customerID,
		Status:     status,
		Lines:      lines,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPurchase created (ID: %d)\n", result.Order.ID)
	return cli.Run(ctx, svc, []string{"show", strconv.Itoa(result.Order.ID)}, nil, out)
}

// editPurchaseWizard shows the padded item list and applies the quantities
// the user enters. Items not mentioned keep their current quantity, including
// items that have since been taken off sale.
func editPurchaseWizard(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer, purchaseID int) error {
	if err := cli.Run(ctx, svc, []string{"edit", strconv.Itoa(purchaseID)}, nil, out); err != nil {
		return err
	}
	shown, err := svc.GetPurchase(ctx, purchaseID)
	if err != nil {
		return err
	}
	if shown.Order == nil {
		return &core.NotFoundError{Entity: "purchase", ID: purchaseID}
	}
	edit, err := svc.EditPurchase(ctx, purchaseID)
	if err != nil {
		return err
	}

	current := make(map[int]int, len(shown.Lines)+len(edit.Lines))
	order := make([]int, 0, len(shown.Lines)+len(edit.Lines))
	for _, l := range shown.Lines {
		current[l.ItemID] = l.Quantity
		order = append(order, l.ItemID)
	}
	for _, l := range edit.Lines {
		if _, held := current[l.ItemID]; !held {
			current[l.ItemID] = l.Quantity
			order = append(order, l.ItemID)
		}
	}

	onSale := make(map[int]bool, len(edit.Lines))
	for _, l := range edit.Lines {
		onSale[l.ItemID] = true
	}
	for _, l := range shown.Lines {
		if !onSale[l.ItemID] {
			fmt.Fprintf(out, "  %-6d %-30s %12s %8d  (no longer on sale)\n",
				l.ItemID, l.ItemName, l.UnitPrice.StringFixed(2), l.Quantity)
		}
	}

	fmt.Fprintln(out, "Enter new quantities (0 removes an item).")
	changes, ok := readLines(reader, out)
	if !ok {
		fmt.Fprintln(out, "Edit cancelled.")
		return nil
	}
	for _, c := range changes {
		if _, known := current[c.ItemID]; !known {
			order = append(order, c.ItemID)
		}
		current[c.ItemID] = c.Quantity
	}

	fmt.Fprintf(out, "Status [%s]: ", shown.Order.Status)
	status := strings.ToLower(readLine(reader))

	lines := make([]app.LineRequest, 0, len(order))
	for _, itemID := range order {
		lines = append(lines, app.LineRequest{ItemID: itemID, Quantity: current[itemID]})
	}

	result, err := svc.UpdatePurchase(ctx, app.UpdatePurchaseRequest{
		PurchaseID: purchaseID,
		Status:     status,
		Version:    shown.Order.Version,
		Lines:      lines,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPurchase %d updated (version %d)\n", purchaseID, result.Order.Version)
	return cli.Run(ctx, svc, []string{"show", strconv.Itoa(purchaseID)}, nil, out)
}

// readLines collects "<item-id> <quantity>" pairs until 'done'.
// It returns false when the user types 'cancel'.
func readLines(reader *bufio.Reader, out io.Writer) ([]app.LineRequest, bool) {
	fmt.Fprintln(out, "Format per line: <item-id> <quantity>. Type 'done' when finished, 'cancel' to abort.")

	var lines []app.LineRequest
	for n := 1; ; {
		fmt.Fprintf(out, "  Line %d: ", n)
		raw, err := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		switch strings.ToLower(raw) {
		case "cancel":
			return nil, false
		case "done":
			return lines, true
		case "":
			if err != nil {
				return lines, true
			}
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) != 2 {
			fmt.Fprintln(out, "  Invalid format. Use: <item-id> <quantity>")
			continue
		}
		itemID, err1 := strconv.Atoi(parts[0])
		qty, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || qty < 0 {
			fmt.Fprintln(out, "  Invalid item ID or quantity.")
			continue
		}
		lines = append(lines, app.LineRequest{ItemID: itemID, Quantity: qty})
		n++
	}
}

func readLine(reader *bufio.Reader) string {
	s, _ := reader.ReadString('\n')
	return strings.TrimSpace(s)
}
