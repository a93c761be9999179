// ABOUTME: Charm KV wrapper exposing the blob cache Store contract
// ABOUTME: Cloud-synced destination with automatic SSH key auth
package charm

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"
	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/harper/cachemigrate/internal/blobcache"
	"github.com/harper/cachemigrate/internal/util"
)

// Config holds charm client configuration
type Config struct {
	Host       string
	DBName     string
	AutoSync   bool
	MaxRetries int
	RetryDelay time.Duration

	// Logger receives sync warnings; log.Default() when nil
	Logger *log.Logger
}

// DefaultConfig returns default configuration for charm client
func DefaultConfig() *Config {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = "cloud.charm.sh"
	}
	return &Config{
		Host:       host,
		DBName:     "blobcache",
		AutoSync:   true,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Backend is the subset of *kv.KV the store relies on
type Backend interface {
	Set(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Close() error
}

// Store wraps charm KV for blob cache operations
type Store struct {
	kv     Backend
	config *Config
	logger *log.Logger
	sleep  func(time.Duration)
	mu     sync.Mutex
}

var _ blobcache.Store = (*Store)(nil)

// Open connects to the charm KV database named in cfg
func Open(cfg *Config) (*Store, error) {
	// kv.OpenWithDefaults only reads the host from the process environment
	if err := os.Setenv("CHARM_HOST", cfg.Host); err != nil {
		return nil, fmt.Errorf("failed to set CHARM_HOST: %w", err)
	}

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	s := NewStore(db, cfg)

	// Pull remote data on startup; an offline start still serves local data
	if cfg.AutoSync {
		if err := s.Sync(); err != nil {
			s.logger.Warn("Starting without remote data", "db", cfg.DBName, "err", err)
		}
	}

	return s, nil
}

// NewStore wraps an already opened backend
func NewStore(backend Backend, cfg *Config) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Store{kv: backend, config: cfg, logger: logger, sleep: time.Sleep}
}

// syncIfEnabled syncs to cloud after writes. The local write has already
// landed when this fails, so callers see an error but the key is readable.
func (s *Store) syncIfEnabled() error {
	if !s.config.AutoSync {
		return nil
	}
	if err := s.syncWithRetry(); err != nil {
		s.logger.Error("Failed to push changes", "db", s.config.DBName, "err", err)
		return err
	}
	return nil
}

// Sync pushes and pulls changes, retrying with backoff on failure
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncWithRetry()
}

func (s *Store) syncWithRetry() error {
	if err := util.Retry(s.config.MaxRetries, s.config.RetryDelay, s.sleep, s.kv.Sync); err != nil {
		return fmt.Errorf("failed to sync charm kv: %w", err)
	}
	return nil
}

// GetAllKeys returns every key in the database
func (s *Store) GetAllKeys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	result := make([]string, 0, len(keys))
	for _, key := range keys {
		result = append(result, string(key))
	}
	return result, nil
}

func (s *Store) entry(key string) (blobcache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get([]byte(key))
	if errors.Is(err, badgerdb.ErrKeyNotFound) || (err == nil && data == nil) {
		return blobcache.Entry{}, fmt.Errorf("%w: %s", blobcache.ErrKeyNotFound, key)
	}
	if err != nil {
		return blobcache.Entry{}, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return blobcache.DecodeEntry(data)
}

// Get retrieves the payload stored under key
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

// Insert stores data with the given key
func (s *Store) Insert(key string, data []byte) error {
	return s.set(key, blobcache.NewEntry(data))
}

// InsertObject marshals and stores a value as JSON
func (s *Store) InsertObject(key string, value any) error {
	e, err := blobcache.NewObjectEntry(value)
	if err != nil {
		return err
	}
	return s.set(key, e)
}

func (s *Store) set(key string, e blobcache.Entry) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set([]byte(key), data); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return s.syncIfEnabled()
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

// InvalidateAll deletes every key and syncs the deletions
func (s *Store) InvalidateAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.kv.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	for _, key := range keys {
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	return s.syncIfEnabled()
}

// Close closes the KV database
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv != nil {
		err := s.kv.Close()
		s.kv = nil
		return err
	}
	return nil
}
