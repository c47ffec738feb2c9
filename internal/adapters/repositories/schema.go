package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite database schema used by the local caches.
func InitSchema(ctx context.Context, db *sql.DB) error {
	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        path TEXT NOT NULL,
        updated_at INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	return execSchema(ctx, db, "init schema", createGeocodeCacheQuery, createRouteCacheQuery)
}

// Initialize the shared Postgres geocode cache schema.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
	`

	return execSchema(ctx, db, "init postgres schema", createGeocodeCacheQuery)
}

func execSchema(ctx context.Context, db *sql.DB, op string, statements ...string) error {
	if db == nil {
		return fmt.Errorf("%s: %w", op, errors.New("DB is nil"))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: exec statement #%d: %w", op, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}

	return nil
}
