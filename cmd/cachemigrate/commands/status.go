// ABOUTME: Status command reports whether the destination still needs migrating
// ABOUTME: Shows marker timestamp and key counts for both stores
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/cachemigrate/internal/blobcache"
	"github.com/harper/cachemigrate/internal/config"
	"github.com/harper/cachemigrate/internal/migration"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration state of the legacy and destination stores",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Destination: %s (%s)\n", cfg.DestPath, cfg.DestBackend)
	if storeExists(cfg.DestBackend, cfg.DestPath) {
		if err := printDestStatus(cmd, cfg); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out, "Migrated:    no (store not found)")
	}

	fmt.Fprintf(out, "Legacy:      %s (%s)\n", cfg.LegacyPath, cfg.LegacyBackend)
	if !storeExists(cfg.LegacyBackend, cfg.LegacyPath) {
		fmt.Fprintln(out, "Legacy keys: (store not found)")
		return nil
	}

	legacy, err := openStore(cmd, cfg, cfg.LegacyBackend, cfg.LegacyPath)
	if err != nil {
		return fmt.Errorf("failed to open legacy store: %w", err)
	}
	defer legacy.Close()

	return printKeyCount(cmd, "Legacy keys:", legacy)
}

// printDestStatus reports the marker and key count of an existing destination
func printDestStatus(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	dest, err := openStore(cmd, cfg, cfg.DestBackend, cfg.DestPath)
	if err != nil {
		return fmt.Errorf("failed to open destination store: %w", err)
	}
	defer dest.Close()

	markedAt, err := dest.GetCreatedAt(migration.MigratedKey)
	if err != nil {
		return fmt.Errorf("failed to read migration marker: %w", err)
	}
	if markedAt == nil {
		fmt.Fprintln(out, "Migrated:    no")
	} else {
		fmt.Fprintf(out, "Migrated:    yes (%s)\n", formatTime(*markedAt))
	}
	return printKeyCount(cmd, "Dest keys:  ", dest)
}

func printKeyCount(cmd *cobra.Command, label string, s blobcache.Store) error {
	keys, err := s.GetAllKeys()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", label, len(keys))
	return nil
}
