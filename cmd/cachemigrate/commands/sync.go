// ABOUTME: Sync commands for Charm-backed destination stores
// ABOUTME: Forces a push/pull with retry, or shows the sync configuration
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/cachemigrate/internal/blobcache/charm"
	"github.com/harper/cachemigrate/internal/config"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud synchronization",
		Long: `Manage synchronization with Charm cloud.

Only applies when the destination backend is charm. Writes made during a
migration sync automatically when CHARM_AUTO_SYNC is enabled.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncNowCmd())

	return cmd
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show Charm sync configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if cfg.DestBackend != config.BackendCharm {
				fmt.Fprintf(out, "Destination backend is %s, sync not used\n", cfg.DestBackend)
				return nil
			}
			fmt.Fprintf(out, "Host:       %s\n", cfg.CharmHost)
			fmt.Fprintf(out, "Database:   %s\n", cfg.CharmDBName)
			fmt.Fprintf(out, "Auto sync:  %t\n", cfg.AutoSync)
			fmt.Fprintf(out, "Retries:    %d (base delay %s)\n", cfg.SyncMaxRetries, cfg.SyncRetryDelay)
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DestBackend != config.BackendCharm {
				return fmt.Errorf("destination backend is %s, not charm", cfg.DestBackend)
			}

			// auto sync would pull on open; the explicit Sync below is the one we report
			ccfg := charmConfig(cmd, cfg)
			ccfg.AutoSync = false
			store, err := charm.Open(ccfg)
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}
			defer store.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Syncing...")
			if err := store.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Sync complete")
			return nil
		},
	}
}
