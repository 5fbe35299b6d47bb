package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"slices"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func New(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Migrate applies every *.sql file of migrations that has not been applied
// yet, one transaction per file, in name order.
func Migrate(ctx context.Context, db *sql.DB, migrations fs.FS) ([]string, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("creating schema_migrations: %w", err)
	}

	names, err := fs.Glob(migrations, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	slices.Sort(names)

	var applied []string

	for _, name := range names {
		ok, err := apply(ctx, db, migrations, name)
		if err != nil {
			return applied, fmt.Errorf("migration %s: %w", name, err)
		}

		if ok {
			applied = append(applied, name)
		}
	}

	return applied, nil
}

func apply(ctx context.Context, db *sql.DB, migrations fs.FS, name string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking migration: %w", err)
	}

	if exists {
		return false, nil
	}

	body, err := fs.ReadFile(migrations, name)
	if err != nil {
		return false, fmt.Errorf("reading file: %w", err)
	}

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return false, fmt.Errorf("executing: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return false, fmt.Errorf("recording migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing: %w", err)
	}

	return true, nil
}
