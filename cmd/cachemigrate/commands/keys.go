// ABOUTME: Keys command lists the entries of either store
// ABOUTME: Prints key, payload size, and age in a table
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/harper/cachemigrate/internal/blobcache"
)

var (
	keysPrefix string
	keysLimit  int
)

// NewKeysCmd creates the keys command
func NewKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "keys <legacy|dest>",
		Short:     "List keys stored in the legacy or destination cache",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"legacy", "dest"},
		RunE:      runKeys,
	}

	cmd.Flags().StringVarP(&keysPrefix, "prefix", "p", "", "Only show keys with this prefix")
	cmd.Flags().IntVarP(&keysLimit, "limit", "n", 100, "Maximum number of keys to show")

	return cmd
}

func runKeys(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(keysLimit, "limit"); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var backend, path string
	switch args[0] {
	case "legacy":
		backend, path = cfg.LegacyBackend, cfg.LegacyPath
	case "dest":
		backend, path = cfg.DestBackend, cfg.DestPath
	default:
		return fmt.Errorf("store must be legacy or dest, got %q", args[0])
	}

	if !storeExists(backend, path) {
		return fmt.Errorf("no %s store at %s", args[0], path)
	}

	store, err := openStore(cmd, cfg, backend, path)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", args[0], err)
	}
	defer store.Close()

	keys, err := blobcache.KeysWithPrefix(store, keysPrefix)
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No keys found")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KEY\tSIZE\tCREATED\n")
	fmt.Fprintf(w, "---\t----\t-------\n")

	shown := keys
	if len(shown) > keysLimit {
		shown = shown[:keysLimit]
	}
	for _, key := range shown {
		data, err := store.Get(key)
		if err != nil {
			return err
		}
		created := "-"
		if ts, err := store.GetCreatedAt(key); err == nil && ts != nil {
			created = formatTime(*ts)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(key, 60), humanize.Bytes(uint64(len(data))), created)
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d key(s)\n", len(keys))
	}
	return nil
}
