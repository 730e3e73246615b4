// app is the command-line front end for the purchasing service. Without
// arguments it starts an interactive session.
//
// Usage:
//
//	go run ./cmd/app
//	go run ./cmd/app list [page]
//	go run ./cmd/app show <id>
//	echo '{"customer_id":1,"lines":[{"item_id":2,"quantity":3}]}' | go run ./cmd/app create
package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"purchasing-admin/internal/adapters/cli"
	"purchasing-admin/internal/adapters/repl"
	"purchasing-admin/internal/bootstrap"
	"purchasing-admin/internal/config"
	"purchasing-admin/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Init(cfg.LogLevel)

	ctx := context.Background()
	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}

	if len(os.Args) < 2 {
		repl.Run(ctx, rt.Service, bufio.NewReader(os.Stdin), os.Stdout)
		rt.Close()
		return
	}

	err = cli.Run(ctx, rt.Service, os.Args[1:], os.Stdin, os.Stdout)
	rt.Close()
	if err != nil {
		log.Fatal(err)
	}
}
