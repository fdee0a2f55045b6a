// Package sqlite implements repository.Store on an embedded SQLite
// database using the pure-Go modernc.org/sqlite driver (no CGo, so the
// engine cross-compiles anywhere Go does).
//
// Schema: one relation for snippets with id as primary key and title
// indexed, one relation for settings keyed by setting name. History is a
// JSON-encoded column; it is opaque to SQL and only read back as a whole.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path surfaces here, not on
	// the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps reads (search-as-you-type) from blocking behind writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL and releasing the file
// lock. Always call it on shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ext implements repository.Store.
func (db *DB) Ext() string {
	return ".db"
}

// Snapshot writes a consistent full copy of the database to dst using
// VACUUM INTO, which folds in any pending WAL frames. dst must not exist.
func (db *DB) Snapshot(ctx context.Context, dst string) error {
	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("sqlite: snapshot into %s: %w", dst, err)
	}
	return nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			category    TEXT NOT NULL DEFAULT '',
			code        TEXT NOT NULL,
			tags        TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			history     TEXT NOT NULL DEFAULT '[]',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			modified_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_title ON snippets(title);
	`)
	if err != nil {
		return fmt.Errorf("creating snippets table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating settings table: %w", err)
	}

	return nil
}
