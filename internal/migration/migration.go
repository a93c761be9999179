// ABOUTME: One-shot migration engine from a legacy blob cache to its replacement
// ABOUTME: Copies artwork and settings, writes the marker, then clears the source
package migration

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harper/cachemigrate/internal/blobcache"
	"github.com/harper/cachemigrate/internal/settings"
)

// MigratedKey marks a destination store as fully migrated
const MigratedKey = "Sqlite3Migrated"

// ArtworkPrefix is the key namespace of artwork blobs
const ArtworkPrefix = "Artwork"

// ErrInvalidArgument is returned by New when a store is missing
var ErrInvalidArgument = errors.New("invalid argument")

// Status is the outcome of a Run
type Status string

const (
	StatusNothingToMigrate Status = "nothing-to-migrate"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

// Report describes what a Run did. Err is set when Status is StatusFailed,
// or when the data landed but the legacy store could not be cleared.
type Report struct {
	RunID         string
	Status        Status
	ArtworkCopied int
	FieldsCopied  int
	Err           error
	Duration      time.Duration
}

// Engine migrates one legacy store into one destination store
type Engine struct {
	oldStore      blobcache.Store
	newStore      blobcache.Store
	schemas       []settings.Schema
	destSchemas   map[string]settings.Schema
	artworkPrefix string
	logger        *log.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for progress and failures
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSchemas replaces the settings schemas copied during a run
func WithSchemas(schemas ...settings.Schema) Option {
	return func(e *Engine) {
		e.schemas = schemas
	}
}

// WithDestinationSchemas sets the shape of the destination's settings when it
// differs from the legacy one. Schemas are matched by name.
func WithDestinationSchemas(schemas ...settings.Schema) Option {
	return func(e *Engine) {
		for _, s := range schemas {
			e.destSchemas[s.Name] = s
		}
	}
}

// WithArtworkPrefix overrides the artwork key namespace
func WithArtworkPrefix(prefix string) Option {
	return func(e *Engine) {
		if prefix != "" {
			e.artworkPrefix = prefix
		}
	}
}

// New creates an engine migrating oldStore into newStore
func New(oldStore, newStore blobcache.Store, opts ...Option) (*Engine, error) {
	if oldStore == nil {
		return nil, fmt.Errorf("%w: oldStore is nil", ErrInvalidArgument)
	}
	if newStore == nil {
		return nil, fmt.Errorf("%w: newStore is nil", ErrInvalidArgument)
	}

	e := &Engine{
		oldStore:      oldStore,
		newStore:      newStore,
		schemas:       settings.DefaultRegistry().All(),
		destSchemas:   make(map[string]settings.Schema),
		artworkPrefix: ArtworkPrefix,
		logger:        log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NeedsMigration reports whether store lacks the migration marker
func NeedsMigration(store blobcache.Store) (bool, error) {
	createdAt, err := store.GetCreatedAt(MigratedKey)
	if err != nil {
		return false, fmt.Errorf("failed to read migration marker: %w", err)
	}
	return createdAt == nil, nil
}

// Run performs the migration. It never returns an error: failures are
// logged and recorded in the Report, and leave the destination unmarked
// and the legacy store untouched so the next run starts over.
func (e *Engine) Run() Report {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	logger := e.logger.With("run", report.RunID)

	finish := func(status Status, err error) Report {
		report.Status = status
		report.Err = err
		report.Duration = time.Since(start)
		return report
	}

	logger.Info("Starting migration from legacy blob cache to new blob cache")

	keys, err := e.oldStore.GetAllKeys()
	if err != nil {
		logger.Error("Failed to enumerate legacy blob cache", "err", err)
		return finish(StatusFailed, err)
	}
	if len(keys) == 0 {
		logger.Info("Nothing to migrate, returning.")
		return finish(StatusNothingToMigrate, nil)
	}

	if err := e.copyAll(keys, &report, logger); err != nil {
		logger.Error("Failed to migrate blob cache", "err", err)
		return finish(StatusFailed, err)
	}

	if err := e.newStore.InsertObject(MigratedKey, true); err != nil {
		logger.Error("Failed to write migration marker", "err", err)
		return finish(StatusFailed, fmt.Errorf("failed to write migration marker: %w", err))
	}

	if err := e.oldStore.InvalidateAll(); err != nil {
		logger.Warn("Migrated, but failed to clear legacy blob cache", "err", err)
		return finish(StatusCompleted, fmt.Errorf("failed to clear legacy store: %w", err))
	}

	logger.Info("Finished blob cache migration",
		"artwork", report.ArtworkCopied,
		"fields", report.FieldsCopied,
		"took", time.Since(start).Round(time.Millisecond))
	return finish(StatusCompleted, nil)
}

// copyAll is the single failure unit: artwork then every schema
func (e *Engine) copyAll(keys []string, report *Report, logger *log.Logger) error {
	n, err := e.migrateArtwork(keys)
	report.ArtworkCopied = n
	if err != nil {
		return err
	}
	logger.Debug("Migrated artwork", "count", n)

	for _, schema := range e.schemas {
		n, err := e.migrateSettings(schema)
		report.FieldsCopied += n
		if err != nil {
			return err
		}
		logger.Debug("Migrated settings", "schema", schema.Name, "fields", n)
	}
	return nil
}

// migrateArtwork copies artwork blobs verbatim. Other keys, such as online
// artwork lookups, are left behind to expire with the legacy store.
func (e *Engine) migrateArtwork(keys []string) (int, error) {
	copied := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, e.artworkPrefix) {
			continue
		}

		data, err := e.oldStore.Get(key)
		if err != nil {
			return copied, fmt.Errorf("failed to read artwork %s: %w", key, err)
		}
		if err := e.newStore.Insert(key, data); err != nil {
			return copied, fmt.Errorf("failed to write artwork %s: %w", key, err)
		}
		copied++
	}
	return copied, nil
}

func (e *Engine) migrateSettings(schema settings.Schema) (int, error) {
	oldView := settings.NewView(schema, e.oldStore)
	dest, ok := e.destSchemas[schema.Name]
	if !ok {
		dest = schema
	}
	newView := settings.NewView(dest, e.newStore)

	n, err := settings.CopyFields(oldView, newView)
	if err != nil {
		return n, fmt.Errorf("failed to migrate %s: %w", schema.Name, err)
	}
	return n, nil
}
