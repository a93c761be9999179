// ABOUTME: In-memory Store implementation for tests and volatile caches
// ABOUTME: Keeps entries in a map guarded by a mutex
package blobcache

import (
	"sync"
	"time"
)

// MemoryStore is a non-persistent Store
type MemoryStore struct {
	entries map[string]Entry
	mu      sync.Mutex
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

// GetAllKeys returns every key in the store
func (m *MemoryStore) GetAllKeys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// Get returns a copy of the payload under key
func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(e.Value))
	copy(out, e.Value)
	return out, nil
}

// Insert stores a copy of data under key
func (m *MemoryStore) Insert(key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = NewEntry(buf)
	return nil
}

// InsertObject stores value as JSON under key
func (m *MemoryStore) InsertObject(key string, value any) error {
	e, err := NewObjectEntry(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	return nil
}

// GetCreatedAt returns the write time of key, nil if absent
func (m *MemoryStore) GetCreatedAt(key string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	t := e.CreatedAt
	return &t, nil
}

// InvalidateAll drops every entry
func (m *MemoryStore) InvalidateAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	return nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
