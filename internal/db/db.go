package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse DATABASE_URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// migrationLockKey serialises concurrent migrators through pg_try_advisory_lock.
const migrationLockKey = 7462839

type migration struct {
	Version  string
	Filename string
	Checksum string
	SQL      string
}

// Migrate applies every *.sql file in fsys that is not yet recorded in
// schema_migrations, each in its own transaction and in lexical order.
// A recorded file whose checksum changed is an error.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	plan, err := discoverMigrations(fsys)
	if err != nil {
		return err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for migration lock: %w", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrationLockKey).Scan(&locked); err != nil {
		return fmt.Errorf("query advisory lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another migrator is currently running")
	}
	defer conn.Exec(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock($1)", migrationLockKey)

	if _, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range plan {
		if err := applyMigration(ctx, conn, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(ctx context.Context, conn *pgxpool.Conn, m migration) error {
	var existing string
	err := conn.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", m.Version).Scan(&existing)
	switch {
	case err == nil:
		if existing != m.Checksum {
			return fmt.Errorf("checksum mismatch for %s: recorded %s, file %s", m.Filename, existing, m.Checksum)
		}
		slog.DebugContext(ctx, "migration skipped", "file", m.Filename)
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("query schema_migrations for %s: %w", m.Filename, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.Filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		m.Version, m.Filename, m.Checksum,
	); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Filename, err)
	}

	slog.InfoContext(ctx, "migration applied", "file", m.Filename)
	return nil
}

// discoverMigrations reads NNN_description.sql files from fsys, sorted by name.
func discoverMigrations(fsys fs.FS) ([]migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	seen := make(map[string]string, len(names))
	out := make([]migration, 0, len(names))
	for _, name := range names {
		version, _, ok := strings.Cut(name, "_")
		if !ok || version == "" {
			return nil, fmt.Errorf("invalid migration filename %s: expected NNN_description.sql", name)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %s: %s and %s", version, prev, name)
		}
		seen[version] = name

		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sum := sha256.Sum256(raw)
		out = append(out, migration{
			Version:  version,
			Filename: name,
			Checksum: hex.EncodeToString(sum[:]),
			SQL:      string(raw),
		})
	}
	return out, nil
}
