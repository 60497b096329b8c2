package storage

import (
	"fmt"

	"github.com/azure/brand-pulse/internal/config"
)

// Open returns the backend named by cfg.StorageBackend together with a
// function that releases it.
func Open(cfg *config.Config) (StorageInterface, func() error, error) {
	switch cfg.StorageBackend {
	case "azure":
		kv, err := NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() error { return nil }, nil
	case "memory":
		return NewMemoryStorage(), func() error { return nil }, nil
	case "badger":
		kv, err := NewBadgerStorage(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
