// ABOUTME: Blob cache Store backed by a SQLite table
// ABOUTME: Destination store for migrations off the legacy cache
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/cachemigrate/internal/blobcache"
)

// Store implements blobcache.Store on top of the cache_elements table
type Store struct {
	db *DB
}

var _ blobcache.Store = (*Store)(nil)

// NewStore opens a file-backed cache at path
func NewStore(path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStoreInMemory creates an in-memory cache (for testing)
func NewStoreInMemory() (*Store, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// GetAllKeys returns every key in the cache
func (s *Store) GetAllKeys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM cache_elements ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Get returns the payload stored under key
func (s *Store) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM cache_elements WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", blobcache.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Insert overwrites key with data
func (s *Store) Insert(key string, data []byte) error {
	return s.upsert(key, "", data)
}

// InsertObject stores value as JSON along with its type name
func (s *Store) InsertObject(key string, value any) error {
	e, err := blobcache.NewObjectEntry(value)
	if err != nil {
		return err
	}
	return s.upsert(key, e.TypeName, e.Value)
}

func (s *Store) upsert(key, typeName string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.Exec(`
		INSERT INTO cache_elements (key, type_name, value, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			type_name = excluded.type_name,
			value = excluded.value,
			created_at = excluded.created_at
	`, key, typeName, data, time.Now().UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// GetCreatedAt returns the write time of key, nil if absent
func (s *Store) GetCreatedAt(key string) (*time.Time, error) {
	var nanos int64
	err := s.db.QueryRow(`SELECT created_at FROM cache_elements WHERE key = ?`, key).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get created_at for %s: %w", key, err)
	}
	t := time.Unix(0, nanos).UTC()
	return &t, nil
}

// InvalidateAll deletes every row
func (s *Store) InvalidateAll() error {
	if _, err := s.db.Exec(`DELETE FROM cache_elements`); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.db.Path()
}
