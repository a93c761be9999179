// ABOUTME: Migrate command runs the one-shot legacy-to-new cache migration
// ABOUTME: Skips when the destination already carries the migration marker
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/cachemigrate/internal/migration"
)

var forceMigrate bool

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy artwork and settings into the new blob cache",
		Long: `Copy artwork blobs and settings from the legacy blob cache into the new one.

Artwork keys are copied byte for byte. Every field of the core and view
settings is copied individually. Other legacy keys (such as online artwork
lookups) are dropped. The legacy cache is cleared only after the destination
has been marked as migrated.`,
		Example: `  # Migrate using defaults under $XDG_DATA_HOME/espera
  cachemigrate migrate

  # Migrate a specific pair of stores
  LEGACY_PATH=./BlobCache DEST_PATH=./blobs.db cachemigrate migrate`,
		RunE: runMigrate,
	}

	cmd.Flags().BoolVar(&forceMigrate, "force", false, "Run even if the destination is already marked as migrated")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	out := cmd.OutOrStdout()

	dest, err := openStore(cmd, cfg, cfg.DestBackend, cfg.DestPath)
	if err != nil {
		return fmt.Errorf("failed to open destination store: %w", err)
	}
	defer dest.Close()

	needs, err := migration.NeedsMigration(dest)
	if err != nil {
		return err
	}
	if !needs && !forceMigrate {
		if !quiet {
			fmt.Fprintln(out, "Already migrated, nothing to do")
		}
		return nil
	}

	if !storeExists(cfg.LegacyBackend, cfg.LegacyPath) {
		if !quiet {
			fmt.Fprintf(out, "No legacy store at %s, nothing to migrate\n", cfg.LegacyPath)
		}
		return nil
	}

	legacy, err := openStore(cmd, cfg, cfg.LegacyBackend, cfg.LegacyPath)
	if err != nil {
		return fmt.Errorf("failed to open legacy store: %w", err)
	}
	defer legacy.Close()

	engine, err := migration.New(legacy, dest,
		migration.WithLogger(logger),
		migration.WithArtworkPrefix(cfg.ArtworkPrefix),
	)
	if err != nil {
		return err
	}

	report := engine.Run()

	switch report.Status {
	case migration.StatusNothingToMigrate:
		if !quiet {
			fmt.Fprintln(out, "Legacy store is empty, nothing to migrate")
		}
	case migration.StatusCompleted:
		if !quiet {
			fmt.Fprintln(out, "Migration completed")
			fmt.Fprintf(out, "  Artwork copied:  %d\n", report.ArtworkCopied)
			fmt.Fprintf(out, "  Fields copied:   %d\n", report.FieldsCopied)
			fmt.Fprintf(out, "  Run ID:          %s\n", report.RunID)
		}
		if report.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", report.Err)
		}
	case migration.StatusFailed:
		return fmt.Errorf("migration failed (run %s), will retry next time: %w", report.RunID, report.Err)
	}

	return nil
}
