package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anasaboreeda/anascode/internal/cache"
)

func openStore(cmd *cobra.Command) (*cache.FileStore, error) {
	cfg := configFrom(cmd)
	return cache.NewFileStore(cfg.Cache.Directory, cache.WithLogger(commandLogger(cmd, "cache")))
}

// NewCacheStatsCmd creates the `cache stats` command.
func NewCacheStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show file count, size and the age of the oldest entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			stats := store.Stats()
			if asJSON {
				return printJSON(cmd.OutOrStdout(), stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render(cmd, headingStyle, "Cache Statistics"))
			fmt.Fprintf(out, "  Directory:    %s\n", store.Directory())
			fmt.Fprintf(out, "  Files:        %d\n", stats.Files)
			fmt.Fprintf(out, "  Total Size:   %s\n", cache.FormatSize(stats.TotalSize))
			fmt.Fprintf(out, "  Oldest Cache: %d minutes\n", stats.OldestAge)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the statistics as JSON")
	return cmd
}

// NewCacheClearCmd creates the `cache clear` command.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			removed := store.Clear()
			cmd.Printf("%s Cleared %d cache file(s)\n", render(cmd, successStyle, "✓"), removed)
			return nil
		},
	}
}

// NewCachePruneCmd creates the `cache prune` command.
func NewCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "prune",
		Aliases: []string{"cleanup"},
		Short:   "Remove expired cache entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			removed := store.CleanupExpired()
			cmd.Printf("%s Removed %d expired cache entr%s\n",
				render(cmd, successStyle, "✓"), removed, pluralY(removed))
			return nil
		},
	}
}

// NewCacheGetCmd creates the `cache get` command.
func NewCacheGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the cached value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			entry, status := store.Lookup(args[0])
			if status != cache.StatusHit {
				return &ExitError{Code: 1, Err: fmt.Errorf("cache %s: %s", status, args[0])}
			}

			cmd.PrintErrf("expires in %s\n", cache.FormatDuration(entry.TimeUntilExpiration(time.Now())))
			var v any
			if err = json.Unmarshal(entry.Data, &v); err != nil {
				return fmt.Errorf("decoding cached value: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), v)
		},
	}
}

// NewCacheSetCmd creates the `cache set` command.
func NewCacheSetCmd() *cobra.Command {
	var ttl string

	cmd := &cobra.Command{
		Use:   "set <key> <json>",
		Short: "Store a JSON value under key",
		Example: `  # Cache a value for one hour
  anascode cache set greeting '{"hello":"world"}' --ttl 1h

  # TTL in seconds
  anascode cache set counter 42 --ttl 300`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cache.ParseTTL(ttl)
			if err != nil {
				return err
			}
			if !json.Valid([]byte(args[1])) {
				return errors.New("value must be valid JSON")
			}
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err = store.Put(args[0], json.RawMessage(args[1]), d); err != nil {
				return err
			}
			cmd.Printf("%s Cached %s for %s\n", render(cmd, successStyle, "✓"), args[0], cache.FormatDuration(d))
			return nil
		},
	}

	cmd.Flags().StringVar(&ttl, "ttl", "1h", "lifetime as seconds or a duration (e.g. 90m)")
	return cmd
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
