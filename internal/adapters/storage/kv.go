package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Slot keys for the persisted state layout. Each key names one JSON document.
const (
	KeyUsers          = "users"
	KeyWeekendEntries = "weekendEntries"
	KeyTheme          = "theme"
	KeyUserData       = "userData"
	KeySessionExpiry  = "sessionExpiry"
)

// KV is the storage port: named key -> document slots with whole-document
// replace-on-write semantics. There are no partial updates and no
// transactions across slots; the last writer wins.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SQLDB is the database interface used by the SQLite-backed KV.
// Both *sql.DB and wrapped instrumented connections satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Compile-time check that *sql.DB satisfies SQLDB.
var _ SQLDB = (*sql.DB)(nil)

// SQLiteKV implements KV over a single kv(key, value) table.
type SQLiteKV struct {
	db SQLDB
}

// Compile-time check that *SQLiteKV satisfies KV.
var _ KV = (*SQLiteKV)(nil)

// NewSQLiteKV creates a KV backed by the given database connection.
func NewSQLiteKV(db SQLDB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

// Get retrieves the document stored under key.
// PRE: key is non-empty
// POST: Returns the value and true, or "" and false if the slot is empty
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set replaces the document stored under key.
// PRE: key is non-empty
// POST: The slot holds exactly value
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value",
		key, value,
	)
	return err
}

// Delete removes the document stored under key. Deleting an absent key is
// not an error.
// PRE: key is non-empty
// POST: The slot is empty
func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: The kv table exists, WAL mode enabled
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
