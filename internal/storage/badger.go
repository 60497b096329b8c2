package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStorage keeps keys in an embedded BadgerDB on local disk
type BadgerStorage struct {
	db *badger.DB
}

var _ StorageInterface = (*BadgerStorage)(nil)

// NewBadgerStorage opens (or creates) a BadgerDB under dir
func NewBadgerStorage(dir string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStorage{db: db}, nil
}

// NewInMemoryBadgerStorage opens a BadgerDB that never touches disk
func NewInMemoryBadgerStorage() (*BadgerStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}

	return &BadgerStorage{db: db}, nil
}

// Store overwrites the value of key in a single transaction
func (s *BadgerStorage) Store(key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Retrieve returns a copy of the value stored under key
func (s *BadgerStorage) Retrieve(key string) ([]byte, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return data, nil
}

// List returns the keys starting with prefix
func (s *BadgerStorage) List(prefix string) ([]string, error) {
	var keys []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})

	return keys, err
}

// Delete removes key
func (s *BadgerStorage) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close closes the database
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}
