package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// ErrKeyNotFound is returned by Get for a missing key.
var ErrKeyNotFound = errors.New("key not found")

// KVEntry is a stored key-value pair.
type KVEntry struct {
	Key   string `badgerhold:"key"`
	Value string
}

// KVStorage implements interfaces.KeyValueStorage on Badger. The portal
// keeps small settings here, such as the theme.
type KVStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

// NewKVStorage creates a key-value storage backed by db.
func NewKVStorage(db *BadgerDB, logger *common.Logger) *KVStorage {
	return &KVStorage{db: db, logger: logger}
}

// Get retrieves a value by key; a missing key yields ErrKeyNotFound.
func (s *KVStorage) Get(_ context.Context, key string) (string, error) {
	var entry KVEntry
	if err := s.db.Store().Get(key, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set stores a key-value pair.
func (s *KVStorage) Set(_ context.Context, key, value string) error {
	if err := s.db.Store().Upsert(key, &KVEntry{Key: key, Value: value}); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *KVStorage) Delete(_ context.Context, key string) error {
	if err := s.db.Store().Delete(key, KVEntry{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// GetAll retrieves every key-value pair.
func (s *KVStorage) GetAll(_ context.Context) (map[string]string, error) {
	var entries []KVEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to get all keys: %w", err)
	}
	result := make(map[string]string, len(entries))
	for _, e := range entries {
		result[e.Key] = e.Value
	}
	return result, nil
}
