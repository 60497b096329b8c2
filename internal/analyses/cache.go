// Package analyses keeps brand sentiment reports across restarts.
//
// Entries are kept in the order their brand was first saved. Saving an
// existing brand again replaces the report in place without moving it, so
// MostRecent reports first-saved brands, not recently refreshed ones.
package analyses

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/storage"
	"github.com/sirupsen/logrus"
)

// StorageKey is the durability key holding the serialized cache
const StorageKey = "savedAnalyses"

// Entry is one saved analysis as persisted
type Entry struct {
	Brand  string                `json:"brand"`
	Report models.AnalysisReport `json:"report"`
}

// Cache maps brand names to their last saved analysis report
type Cache struct {
	mu       sync.RWMutex
	kv       storage.StorageInterface
	capacity int
	entries  []Entry
	index    map[string]int
}

// New creates a cache hydrated from kv. A capacity of zero or less keeps
// every brand; a positive capacity evicts the earliest-saved brand when a
// new one would exceed it.
func New(kv storage.StorageInterface, capacity int) *Cache {
	c := &Cache{
		kv:       kv,
		capacity: capacity,
	}
	c.setEntries(c.load())
	return c
}

func (c *Cache) load() []Entry {
	data, err := c.kv.Retrieve(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logrus.Warnf("Failed to read saved analyses, starting empty: %v", err)
		}
		return nil
	}

	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		logrus.Warn(&models.StorageCorruptionError{Key: StorageKey, Err: err})
		return nil
	}

	// keep the last report stored for a brand, at its first position
	seen := make(map[string]int, len(raw))
	var entries []Entry
	for _, entry := range raw {
		if i, ok := seen[entry.Brand]; ok {
			entries[i].Report = entry.Report
			continue
		}
		seen[entry.Brand] = len(entries)
		entries = append(entries, entry)
	}

	if c.capacity > 0 && len(entries) > c.capacity {
		entries = entries[len(entries)-c.capacity:]
	}
	return entries
}

// Save stores report under brand, replacing any previous report for it
func (c *Cache) Save(brand string, report models.AnalysisReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := append([]Entry{}, c.entries...)
	if i, ok := c.index[brand]; ok {
		entries[i].Report = report
	} else {
		entries = append(entries, Entry{Brand: brand, Report: report})
		if c.capacity > 0 && len(entries) > c.capacity {
			evicted := entries[0]
			entries = entries[1:]
			logrus.Infof("Evicted saved analysis for %q (capacity %d)", evicted.Brand, c.capacity)
		}
	}

	return c.commit(entries)
}

// Remove deletes the report for brand if there is one
func (c *Cache) Remove(brand string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[brand]
	if !ok {
		return nil
	}

	entries := make([]Entry, 0, len(c.entries)-1)
	entries = append(entries, c.entries[:i]...)
	entries = append(entries, c.entries[i+1:]...)
	return c.commit(entries)
}

// Get returns the report saved for brand
func (c *Cache) Get(brand string) (models.AnalysisReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[brand]
	if !ok {
		return models.AnalysisReport{}, false
	}
	return c.entries[i].Report, true
}

// MostRecent returns up to n brands in stored order
func (c *Cache) MostRecent(n int) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n > len(c.entries) {
		n = len(c.entries)
	}
	brands := make([]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		brands = append(brands, c.entries[i].Brand)
	}
	return brands
}

// Brands returns every saved brand in stored order
func (c *Cache) Brands() []string {
	return c.MostRecent(c.Len())
}

// Len returns the number of saved analyses
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// commit persists entries and then makes them current. An empty cache
// deletes the key. Callers hold mu.
func (c *Cache) commit(entries []Entry) error {
	if len(entries) == 0 {
		if err := c.kv.Delete(StorageKey); err != nil {
			return fmt.Errorf("failed to clear saved analyses: %w", err)
		}
		c.setEntries(nil)
		return nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal saved analyses: %w", err)
	}
	if err := c.kv.Store(StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist saved analyses: %w", err)
	}

	c.setEntries(entries)
	return nil
}

func (c *Cache) setEntries(entries []Entry) {
	c.entries = entries
	c.index = make(map[string]int, len(entries))
	for i, entry := range entries {
		c.index[entry.Brand] = i
	}
}
