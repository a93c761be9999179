// ABOUTME: Root command, global flags, and shared setup for every subcommand
// ABOUTME: Loads .env and config, builds the logger, and opens blob caches
package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/cachemigrate/internal/blobcache"
	"github.com/harper/cachemigrate/internal/blobcache/badger"
	"github.com/harper/cachemigrate/internal/blobcache/charm"
	"github.com/harper/cachemigrate/internal/blobcache/sqlite"
	"github.com/harper/cachemigrate/internal/config"
)

var (
	verbose    bool
	quiet      bool
	configPath string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cachemigrate",
		Short: "Move artwork and settings from the legacy blob cache to the new one",
		Long: `cachemigrate performs the one-time move of persisted artwork blobs and
settings records from the legacy blob cache into its replacement.

The destination is stamped with a Sqlite3Migrated marker once every blob
and setting has been copied; only then is the legacy cache cleared. A
failed run leaves both stores as they were and is retried next time.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewKeysCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env, the optional config file, and the environment
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger writes to the command's stderr at the configured level
func newLogger(cmd *cobra.Command, cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		ReportTimestamp: true,
		Prefix:          "cachemigrate",
	})

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	switch {
	case verbose:
		level = log.DebugLevel
	case quiet:
		level = log.ErrorLevel
	}
	logger.SetLevel(level)
	return logger
}

// openStore opens the blob cache for one side of the migration
func openStore(cmd *cobra.Command, cfg *config.Config, backend, path string) (blobcache.Store, error) {
	switch backend {
	case config.BackendBadger:
		return badger.Open(path)
	case config.BackendSQLite:
		return sqlite.NewStore(path)
	case config.BackendCharm:
		return charm.Open(charmConfig(cmd, cfg))
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

func charmConfig(cmd *cobra.Command, cfg *config.Config) *charm.Config {
	return &charm.Config{
		Host:       cfg.CharmHost,
		DBName:     cfg.CharmDBName,
		AutoSync:   cfg.AutoSync,
		MaxRetries: cfg.SyncMaxRetries,
		RetryDelay: cfg.SyncRetryDelay,
		Logger:     newLogger(cmd, cfg),
	}
}

// storeExists reports whether a file-backed store is already on disk.
// Charm stores always exist remotely.
func storeExists(backend, path string) bool {
	if backend == config.BackendCharm {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}
