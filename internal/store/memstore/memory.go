// Package memstore provides an in-memory implementation of store.KV.
// It is used by unit tests and by the "memory" backend; data exists only
// for the lifetime of the process.
package memstore

import (
	"fmt"
	"sync"

	"github.com/yiblet/proboost/internal/store"
)

// MemoryStore is an in-memory store.KV guarded by a RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string

	// failWrites makes Set and Delete fail, for exercising storage errors.
	failWrites error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

// Get retrieves a value by key.
func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.values[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	return value, nil
}

// Set stores a value.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return m.failWrites
	}
	m.values[key] = value
	return nil
}

// Delete removes a key.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrites != nil {
		return m.failWrites
	}
	if _, exists := m.values[key]; !exists {
		return fmt.Errorf("%w: %s", store.ErrNotFound, key)
	}
	delete(m.values, key)
	return nil
}

// List returns a copy of all key-value pairs.
func (m *MemoryStore) List() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return copy to prevent external modification
	result := make(map[string]string, len(m.values))
	for k, v := range m.values {
		result[k] = v
	}
	return result, nil
}

// Close releases resources (no-op for memory store).
func (m *MemoryStore) Close() error {
	return nil
}

// FailWrites makes every subsequent Set and Delete return err.
// Passing nil restores normal behavior.
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = err
}
