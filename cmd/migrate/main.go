// migrate applies the embedded schema to DATABASE_URL.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"
	"log"

	"purchasing-admin/internal/config"
	"purchasing-admin/internal/db"
	"purchasing-admin/internal/logging"
	"purchasing-admin/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Init(cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Schema is up to date.")
}
