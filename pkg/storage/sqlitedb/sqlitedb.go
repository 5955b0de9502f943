// Package sqlitedb opens the storefront database. The catalog and the order
// log live here; cart contents never do.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// DefaultFile is used when no path is configured.
const DefaultFile = "storefront.db"

// Memory opens a private in-memory database, handy for tests and demos.
const Memory = ":memory:"

// Open connects to the database at path, creating parent directories as needed.
// An empty path resolves to DefaultFile in the working directory.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(cwd, DefaultFile)
	}
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("unable to create database directory: %w", err)
		}
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer, and every :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach database %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema executes CREATE TABLE statements so a fresh file gets the right layout.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			featured INTEGER NOT NULL DEFAULT 0,
			spice_level TEXT NOT NULL DEFAULT '',
			in_stock INTEGER NOT NULL DEFAULT 1,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			lines TEXT NOT NULL,
			subtotal TEXT NOT NULL,
			shipping TEXT NOT NULL,
			tax TEXT NOT NULL,
			total TEXT NOT NULL,
			status TEXT NOT NULL,
			ship_name TEXT NOT NULL,
			ship_email TEXT NOT NULL,
			ship_address TEXT NOT NULL,
			ship_city TEXT NOT NULL,
			ship_postal_code TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("unable to apply schema: %w", err)
		}
	}
	return nil
}
