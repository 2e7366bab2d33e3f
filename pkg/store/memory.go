package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/stoatworks/memorank/pkg/note"
)

// MemoryEntryStore is an in-process EntryStore for tests and embedders that
// do not want a database. Documents are deep-copied on the way in and out so
// callers cannot alias stored state.
type MemoryEntryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryEntryStore creates an empty in-memory store.
func NewMemoryEntryStore() *MemoryEntryStore {
	return &MemoryEntryStore{entries: make(map[string][]byte)}
}

// Load returns a copy of the user's entry, or a fresh default one.
func (s *MemoryEntryStore) Load(ctx context.Context, userID string) (*note.Entry, error) {
	s.mu.RLock()
	doc, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok {
		return note.NewEntry(), nil
	}

	var entry note.Entry
	if err := json.Unmarshal(doc, &entry); err != nil {
		return note.NewEntry(), nil
	}
	return &entry, nil
}

// Save replaces the user's document.
func (s *MemoryEntryStore) Save(ctx context.Context, userID string, entry *note.Entry) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[userID] = doc
	s.mu.Unlock()
	return nil
}

// Close does nothing.
func (s *MemoryEntryStore) Close() error { return nil }
