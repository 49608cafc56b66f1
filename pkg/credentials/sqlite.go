// Package credentials persists the dashboard credential in SQLite so a saved
// movie key survives restarts.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	dashboard "github.com/goliatone/go-apidash/components/dashboard"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore implements dashboard.CredentialStore on a single table row.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

var _ dashboard.CredentialStore = (*SQLiteStore)(nil)

// Open opens (and creates when missing) the database at path. ":memory:"
// keeps the credential for the lifetime of the store.
func Open(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("credentials: database path is required")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("credentials: create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("credentials: open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("credentials: set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("credentials: initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, name: dashboard.CredentialKey}, nil
}

// Save overwrites the stored credential. Blank values are rejected with
// dashboard.ErrEmptyCredential.
func (s *SQLiteStore) Save(ctx context.Context, value string) error {
	value, err := dashboard.NormalizeCredential(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("credentials: save %s: %w", s.name, err)
	}
	return nil
}

// Load returns the stored credential; ok is false when nothing was saved.
func (s *SQLiteStore) Load(ctx context.Context) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM credentials WHERE name = ?`, s.name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credentials: load %s: %w", s.name, err)
	}
	return value, true, nil
}

// UpdatedAt reports when the credential was last saved.
func (s *SQLiteStore) UpdatedAt(ctx context.Context) (time.Time, bool, error) {
	var updated time.Time
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM credentials WHERE name = ?`, s.name).Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("credentials: load %s timestamp: %w", s.name, err)
	}
	return updated, true, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
