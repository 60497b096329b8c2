package storage

import "errors"

// ErrNotFound is returned by Retrieve when no value exists for a key
var ErrNotFound = errors.New("storage: key not found")

// StorageInterface defines the contract for the key-value durability layer.
// A Store call replaces the whole value of a key atomically.
type StorageInterface interface {
	Store(key string, data []byte) error
	Retrieve(key string) ([]byte, error)
	List(prefix string) ([]string, error)
	Delete(key string) error
}
