// CLAUDE:SUMMARY SQLite database handle for domfill — opens with production pragmas and applies the schema.
// Package store provides the SQLite persistence layer for domfill:
// named templates and the render log.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Store is the domfill database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the domfill SQLite database at path, creating
// parent directories, applying production pragmas (WAL, busy_timeout,
// synchronous NORMAL, foreign_keys ON) and the schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: exec schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &Store{DB: db}, nil
}

// OpenMemory opens an in-memory database for testing. MaxOpenConns(1)
// ensures every query hits the same in-memory database (each connection to
// ":memory:" creates a separate one). Closed automatically via t.Cleanup.
func OpenMemory(t testing.TB) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("store.OpenMemory: %v", err)
	}
	s.DB.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

// TemplatesVersion returns a version token scoped to the templates table:
// it moves on every insert, update, and delete of a template, and stays put
// while only the render log grows. PRAGMA data_version would not do here —
// render-log inserts land on other pool connections and would bump it on
// every render, flushing the cache for nothing.
func (s *Store) TemplatesVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(updated_at), 0) + COUNT(*) FROM templates`).Scan(&v)
	return v, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
