package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"purchasing-admin/internal/adapters/cli"
	"purchasing-admin/internal/app"
)

var errExit = errors.New("exit")

// Run starts the interactive loop. Slash commands mirror the one-shot CLI;
// /new and /edit <id> walk through a purchase line by line.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "Purchasing Admin")
	fmt.Fprintln(out, "Type /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if readErr != nil {
				return
			}
			continue
		}

		if err := dispatch(ctx, svc, reader, out, input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		if readErr != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer, input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])

	switch cmd {
	case "help", "h":
		printHelp(out)

	case "items", "customers", "list", "ls", "show":
		return cli.Run(ctx, svc, append([]string{cmd}, tokens[1:]...), nil, out)

	case "new":
		return newPurchaseWizard(ctx, svc, reader, out)

	case "edit":
		if len(tokens) < 2 {
			return fmt.Errorf("usage: /edit <purchase-id>")
		}
		id, err := strconv.Atoi(tokens[1])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid purchase ID %q", tokens[1])
		}
		return editPurchaseWizard(ctx, svc, reader, out, id)

	case "delete", "rm":
		if len(tokens) < 2 {
			return fmt.Errorf("usage: /delete <purchase-id>")
		}
		id, err := strconv.Atoi(tokens[1])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid purchase ID %q", tokens[1])
		}
		return svc.DeletePurchase(ctx, id)

	case "exit", "quit", "q":
		return errExit

	default:
		fmt.Fprintf(out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "  /items               list items on sale")
	fmt.Fprintln(out, "  /customers           list customers")
	fmt.Fprintln(out, "  /list [page]         list purchases, 50 per page")
	fmt.Fprintln(out, "  /show <id>           show a purchase with its lines")
	fmt.Fprintln(out, "  /new                 create a purchase")
	fmt.Fprintln(out, "  /edit <id>           change a purchase's status and quantities")
	fmt.Fprintln(out, "  /delete <id>         delete a purchase (not supported yet)")
	fmt.Fprintln(out, "  /exit                leave")
}
