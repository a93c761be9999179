// ABOUTME: Keyed blob store contract shared by every cache backend
// ABOUTME: Defines the Store interface, sentinel errors, and typed helpers
package blobcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrKeyNotFound is returned by Get when a key has never been written
// or has been invalidated.
var ErrKeyNotFound = errors.New("key not found")

// Store is a persistent mapping from string keys to opaque byte payloads.
// Keys are written wholesale; there are no partial updates.
type Store interface {
	// GetAllKeys enumerates every key currently stored
	GetAllKeys() ([]string, error)

	// Get returns the raw payload stored under key, or ErrKeyNotFound
	Get(key string) ([]byte, error)

	// Insert overwrites key with data
	Insert(key string, data []byte) error

	// InsertObject stores the JSON encoding of value under key
	InsertObject(key string, value any) error

	// GetCreatedAt returns when key was written, or nil if it is absent
	GetCreatedAt(key string) (*time.Time, error)

	// InvalidateAll deletes every key in the store
	InvalidateAll() error

	// Close releases the backend
	Close() error
}

// GetObject reads key and decodes the JSON payload written by InsertObject
func GetObject[T any](s Store, key string) (T, error) {
	var out T
	data, err := s.Get(key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return out, nil
}

// KeysWithPrefix returns the sorted keys that start with prefix
func KeysWithPrefix(s Store, prefix string) ([]string, error) {
	keys, err := s.GetAllKeys()
	if err != nil {
		return nil, err
	}

	var result []string
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			result = append(result, key)
		}
	}
	sort.Strings(result)
	return result, nil
}

// TypeName returns the name recorded alongside objects written with InsertObject
func TypeName(value any) string {
	return fmt.Sprintf("%T", value)
}
