package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stoatworks/memorank/pkg/note"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteEntryStore implements EntryStore on a single SQLite table. Each user
// maps to one row holding the full JSON document; a rewrite is one
// transactional UPSERT, so readers never observe a partial document.
type SQLiteEntryStore struct {
	db *sql.DB
}

// NewSQLiteEntryStore opens (or creates) the store at dbPath. The path can be
// ":memory:" for an in-memory database.
func NewSQLiteEntryStore(dbPath string) (*SQLiteEntryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteEntryStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the entries table if it doesn't exist.
func (s *SQLiteEntryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memory_entries (
		user_id TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// DB returns the underlying database connection for advanced operations.
func (s *SQLiteEntryStore) DB() *sql.DB {
	return s.db
}

// Load fetches a user's document. A missing row or a document that fails to
// decode yields a fresh default entry: malformed persisted state is never
// fatal to the caller.
func (s *SQLiteEntryStore) Load(ctx context.Context, userID string) (*note.Entry, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM memory_entries WHERE user_id = ?", userID).Scan(&doc)
	if err == sql.ErrNoRows {
		return note.NewEntry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load entry: %w", err)
	}

	var entry note.Entry
	if err := json.Unmarshal([]byte(doc), &entry); err != nil {
		// Corrupt document: degrade to an empty entry rather than fail.
		return note.NewEntry(), nil
	}
	return &entry, nil
}

// Save rewrites the user's full document inside one transaction.
func (s *SQLiteEntryStore) Save(ctx context.Context, userID string, entry *note.Entry) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	query := `
		INSERT INTO memory_entries (user_id, doc, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, userID, string(doc), time.Now()); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteEntryStore) Close() error {
	return s.db.Close()
}
