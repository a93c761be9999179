// ABOUTME: Legacy blob cache backed by an embedded Badger database
// ABOUTME: Each key holds a JSON entry envelope with payload and created-at
package badger

import (
	"errors"
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/harper/cachemigrate/internal/blobcache"
)

// Store implements blobcache.Store on a Badger key space
type Store struct {
	db   *badgerdb.DB
	path string
}

var _ blobcache.Store = (*Store)(nil)

// Open opens or creates a Badger directory at path
func Open(path string) (*Store, error) {
	opts := badgerdb.DefaultOptions(path).WithLogger(nil)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// OpenInMemory creates a Badger store that never touches disk (for testing)
func OpenInMemory() (*Store, error) {
	opts := badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger store: %w", err)
	}
	return &Store{db: db, path: ":memory:"}, nil
}

// GetAllKeys iterates the key space without fetching values
func (s *Store) GetAllKeys() ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (s *Store) entry(key string) (blobcache.Entry, error) {
	var raw []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return blobcache.Entry{}, fmt.Errorf("%w: %s", blobcache.ErrKeyNotFound, key)
	}
	if err != nil {
		return blobcache.Entry{}, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return blobcache.DecodeEntry(raw)
}

// Get returns the payload stored under key
func (s *Store) Get(key string) ([]byte, error) {
	e, err := s.entry(key)
	if err != nil {
		return nil, err
	}
	if e.Value == nil {
		return []byte{}, nil
	}
	return e.Value, nil
}

// Insert overwrites key with data
func (s *Store) Insert(key string, data []byte) error {
	return s.put(key, blobcache.NewEntry(data))
}

// InsertObject stores value as JSON under key
func (s *Store) InsertObject(key string, value any) error {
	e, err := blobcache.NewObjectEntry(value)
	if err != nil {
		return err
	}
	return s.put(key, e)
}

func (s *Store) put(key string, e blobcache.Entry) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// GetCreatedAt returns the write time of key, nil if absent
func (s *Store) GetCreatedAt(key string) (*time.Time, error) {
	e, err := s.entry(key)
	if errors.Is(err, blobcache.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := e.CreatedAt
	return &t, nil
}

// InvalidateAll drops every key
func (s *Store) InvalidateAll() error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// Close closes the Badger database
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the Badger directory
func (s *Store) Path() string {
	return s.path
}
