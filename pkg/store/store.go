// Package store persists per-user memory entries. Every mutation is a
// full-document rewrite that external readers see atomically. The store does
// not serialize concurrent writers for the same user; the engine owns that.
package store

import (
	"context"

	"github.com/stoatworks/memorank/pkg/note"
)

// EntryStore is the canonical key-value interface for per-user documents.
type EntryStore interface {
	// Load returns the entry for a user. A missing or malformed document
	// yields a fresh default entry, never an error result for the caller's
	// data path.
	Load(ctx context.Context, userID string) (*note.Entry, error)

	// Save atomically replaces the user's full document.
	Save(ctx context.Context, userID string, entry *note.Entry) error

	// Close releases backing resources.
	Close() error
}
