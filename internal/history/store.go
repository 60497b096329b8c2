// Package history keeps the most recent search queries across restarts.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	// StorageKey is the durability key holding the serialized history
	StorageKey = "searchHistory"
	// MaxEntries bounds the number of remembered queries
	MaxEntries = 10
)

// Store is a bounded, most-recent-first list of distinct queries
type Store struct {
	mu      sync.Mutex
	kv      storage.StorageInterface
	entries []string
}

// New creates a store hydrated from kv. Missing or unreadable data starts
// an empty history.
func New(kv storage.StorageInterface) *Store {
	s := &Store{kv: kv}
	s.entries = s.load()
	return s
}

func (s *Store) load() []string {
	data, err := s.kv.Retrieve(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logrus.Warnf("Failed to read search history, starting empty: %v", err)
		}
		return nil
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		logrus.Warn(&models.StorageCorruptionError{Key: StorageKey, Err: err})
		return nil
	}

	var entries []string
	for _, query := range raw {
		if strings.TrimSpace(query) == "" || slices.Contains(entries, query) {
			continue
		}
		entries = append(entries, query)
		if len(entries) == MaxEntries {
			break
		}
	}
	return entries
}

// Record moves query to the front of the history. Blank queries are ignored.
func (s *Store) Record(query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]string, 0, MaxEntries)
	updated = append(updated, query)
	for _, existing := range s.entries {
		if existing != query && len(updated) < MaxEntries {
			updated = append(updated, existing)
		}
	}

	return s.commit(updated)
}

// Clear empties the history and drops its persisted value
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(StorageKey); err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}

	s.entries = nil
	return nil
}

// List returns the queries, most recent first
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.entries...)
}

// commit persists entries and then makes them current. Callers hold mu.
func (s *Store) commit(entries []string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal search history: %w", err)
	}
	if err := s.kv.Store(StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist search history: %w", err)
	}

	s.entries = entries
	return nil
}
