// ABOUTME: Centralized configuration for the cache migration tool
// ABOUTME: Layers defaults, an optional TOML file, and environment overrides
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// Supported store backends
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// Config holds all configuration for a migration
type Config struct {
	// Legacy (source) store
	LegacyBackend string
	LegacyPath    string

	// Destination store
	DestBackend string
	DestPath    string

	// Charm settings, used when either backend is charm
	CharmHost      string
	CharmDBName    string
	AutoSync       bool
	SyncMaxRetries int
	SyncRetryDelay time.Duration

	// Migration settings
	ArtworkPrefix string
	LogLevel      string
}

// fileConfig mirrors Config for TOML decoding; empty values are ignored
type fileConfig struct {
	Legacy struct {
		Backend string `toml:"backend"`
		Path    string `toml:"path"`
	} `toml:"legacy"`
	Dest struct {
		Backend string `toml:"backend"`
		Path    string `toml:"path"`
	} `toml:"dest"`
	Charm struct {
		Host       string `toml:"host"`
		DB         string `toml:"db"`
		AutoSync   *bool  `toml:"auto_sync"`
		MaxRetries *int   `toml:"max_retries"`
		RetryDelay string `toml:"retry_delay"`
	} `toml:"charm"`
	ArtworkPrefix string `toml:"artwork_prefix"`
	LogLevel      string `toml:"log_level"`
}

// DataDir returns the application data directory following XDG base directory rules
func DataDir() string {
	// Respects XDG_DATA_HOME override for testing
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "espera")
}

// Default returns the built-in configuration
func Default() *Config {
	dir := DataDir()
	return &Config{
		LegacyBackend:  BackendBadger,
		LegacyPath:     filepath.Join(dir, "BlobCache"),
		DestBackend:    BackendSQLite,
		DestPath:       filepath.Join(dir, "blobs.db"),
		CharmHost:      "cloud.charm.sh",
		CharmDBName:    "espera",
		AutoSync:       true,
		SyncMaxRetries: 3,
		SyncRetryDelay: time.Second,
		ArtworkPrefix:  "Artwork",
		LogLevel:       "info",
	}
}

// Load reads configuration from environment variables on top of defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads the TOML file at path (if any), then applies environment overrides
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.LegacyBackend = getEnv("LEGACY_BACKEND", cfg.LegacyBackend)
	cfg.LegacyPath = getEnv("LEGACY_PATH", cfg.LegacyPath)
	cfg.DestBackend = getEnv("DEST_BACKEND", cfg.DestBackend)
	cfg.DestPath = getEnv("DEST_PATH", cfg.DestPath)
	cfg.CharmHost = getEnv("CHARM_HOST", cfg.CharmHost)
	cfg.CharmDBName = getEnv("CHARM_DB", cfg.CharmDBName)
	cfg.AutoSync = getEnvBool("CHARM_AUTO_SYNC", cfg.AutoSync)
	cfg.SyncMaxRetries = getEnvInt("SYNC_MAX_RETRIES", cfg.SyncMaxRetries)
	cfg.SyncRetryDelay = getEnvDuration("SYNC_RETRY_DELAY", cfg.SyncRetryDelay)
	cfg.ArtworkPrefix = getEnv("ARTWORK_PREFIX", cfg.ArtworkPrefix)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.LegacyBackend = strings.ToLower(cfg.LegacyBackend)
	cfg.DestBackend = strings.ToLower(cfg.DestBackend)

	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	var f fileConfig
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	setString(&c.LegacyBackend, f.Legacy.Backend)
	setString(&c.LegacyPath, f.Legacy.Path)
	setString(&c.DestBackend, f.Dest.Backend)
	setString(&c.DestPath, f.Dest.Path)
	setString(&c.CharmHost, f.Charm.Host)
	setString(&c.CharmDBName, f.Charm.DB)
	setString(&c.ArtworkPrefix, f.ArtworkPrefix)
	setString(&c.LogLevel, f.LogLevel)
	if f.Charm.AutoSync != nil {
		c.AutoSync = *f.Charm.AutoSync
	}
	if f.Charm.MaxRetries != nil {
		c.SyncMaxRetries = *f.Charm.MaxRetries
	}
	if f.Charm.RetryDelay != "" {
		d, err := time.ParseDuration(f.Charm.RetryDelay)
		if err != nil {
			return fmt.Errorf("invalid charm.retry_delay %q: %w", f.Charm.RetryDelay, err)
		}
		c.SyncRetryDelay = d
	}
	return nil
}

// Validate checks backend names, paths, and retry bounds
func (c *Config) Validate() error {
	if !validBackend(c.LegacyBackend) {
		return fmt.Errorf("LEGACY_BACKEND must be badger, sqlite or charm, got %q", c.LegacyBackend)
	}
	if !validBackend(c.DestBackend) {
		return fmt.Errorf("DEST_BACKEND must be badger, sqlite or charm, got %q", c.DestBackend)
	}
	if c.LegacyBackend != BackendCharm && c.LegacyPath == "" {
		return fmt.Errorf("LEGACY_PATH must be set for the %s backend", c.LegacyBackend)
	}
	if c.DestBackend != BackendCharm && c.DestPath == "" {
		return fmt.Errorf("DEST_PATH must be set for the %s backend", c.DestBackend)
	}
	if c.LegacyBackend == c.DestBackend && c.LegacyBackend != BackendCharm && samePath(c.LegacyPath, c.DestPath) {
		return fmt.Errorf("legacy and destination stores must differ, both are %s", c.LegacyPath)
	}
	if c.LegacyBackend == BackendCharm && c.DestBackend == BackendCharm {
		return fmt.Errorf("legacy and destination stores cannot both be charm")
	}
	if c.SyncMaxRetries < 0 || c.SyncMaxRetries > 10 {
		return fmt.Errorf("SYNC_MAX_RETRIES must be 0-10, got %d", c.SyncMaxRetries)
	}
	if c.SyncRetryDelay <= 0 {
		return fmt.Errorf("SYNC_RETRY_DELAY must be positive, got %v", c.SyncRetryDelay)
	}
	if c.ArtworkPrefix == "" {
		return fmt.Errorf("ARTWORK_PREFIX must not be empty")
	}
	return nil
}

func validBackend(b string) bool {
	switch b {
	case BackendBadger, BackendSQLite, BackendCharm:
		return true
	}
	return false
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
