// seed loads demo customers and items into an empty or existing database.
// A row is inserted only when no row with the same name exists; existing rows
// are left untouched, so re-running it is safe.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"

	"purchasing-admin/internal/adapters/cache"
	"purchasing-admin/internal/config"
	"purchasing-admin/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := seed(ctx, pool); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	// The sellable list changed underneath any running server.
	if cfg.RedisAddr != "" {
		client, err := cache.Dial(ctx, cfg.RedisAddr)
		if err != nil {
			log.Printf("Warning: could not reach Redis to invalidate catalog cache: %v", err)
		} else {
			if err := cache.NewRedisCatalogCache(client, cfg.CatalogCacheTTL).Invalidate(ctx); err != nil {
				log.Printf("Warning: catalog cache invalidation failed: %v", err)
			}
			_ = client.Close()
		}
	}

	log.Println("Seed data restored.")
}

// seed inserts the demo customers and items that are missing, in one transaction.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Restoring customers...")
	if err := seedCustomers(ctx, tx); err != nil {
		return fmt.Errorf("restore customers: %w", err)
	}

	log.Println("Restoring items...")
	if err := seedItems(ctx, tx); err != nil {
		return fmt.Errorf("restore items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func seedCustomers(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO customers (name, kana, tel, email)
		SELECT v.name, v.kana, v.tel, v.email
		FROM (VALUES
		    ('Sato Trading',    'サトウトレーディング', '03-1111-2222', 'orders@sato.example'),
		    ('Suzuki Foods',    'スズキフーズ',         '06-3333-4444', 'buy@suzuki.example'),
		    ('Takahashi Works', 'タカハシワークス',     '052-555-6666', 'info@takahashi.example')
		) AS v(name, kana, tel, email)
		WHERE NOT EXISTS (SELECT 1 FROM customers c WHERE c.name = v.name);
	`)
	return err
}

func seedItems(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO items (name, memo, price, is_selling)
		SELECT v.name, v.memo, v.price, v.is_selling
		FROM (VALUES
		    ('Green Tea 500ml',  'Bottled',         150.00, true),
		    ('Rice Crackers',    'Family pack',     320.00, true),
		    ('Miso Paste 1kg',   '',                780.00, true),
		    ('Seasonal Gift Box','Discontinued',   3500.00, false)
		) AS v(name, memo, price, is_selling)
		WHERE NOT EXISTS (SELECT 1 FROM items i WHERE i.name = v.name);
	`)
	return err
}
