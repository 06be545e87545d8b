package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/benchsrc/internal/cachekey"
	"github.com/raphi011/benchsrc/internal/history"
	"github.com/raphi011/benchsrc/internal/log"
	"github.com/raphi011/benchsrc/internal/output"
	"github.com/raphi011/benchsrc/internal/repocache"
	"github.com/raphi011/benchsrc/internal/resolve"
	"github.com/raphi011/benchsrc/internal/ui/static"
	"github.com/raphi011/benchsrc/internal/worktree"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cache",
		Short:   "Inspect the clone and worktree cache",
		GroupID: GroupCore,
		Long: `Inspect the cache root.

Bare clones live in <cache_root>/repos/<host>/<path>, persistent worktrees in
<cache_root>/worktrees/remote/<host>/<path>/<commit> and
<cache_root>/worktrees/local/<repo>/<commit>.`,
		Example: `  benchsrc cache path https://github.com/acme/acme
  benchsrc cache list
  benchsrc cache list --json
  cd $(benchsrc cache last)
  benchsrc cache prune --older-than 168h --dry-run`,
	}

	cmd.AddCommand(newCachePathCmd())
	cmd.AddCommand(newCacheListCmd())
	cmd.AddCommand(newCacheLastCmd())
	cmd.AddCommand(newCachePruneCmd())

	return cmd
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <url>",
		Short: "Print the bare clone path for a remote URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			remote := resolve.NewRemoteInfo(ctx, c.DefaultRemote, args[0])
			path, err := repocache.New(c.CacheRoot).PathFor(remote.URL)
			if err != nil {
				return err
			}
			output.FromContext(ctx).Println(path)
			return nil
		},
	}
}

func newCacheListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List persistent worktrees",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := output.FromContext(ctx)

			c, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			entries, err := worktree.NewMaterializer(c.CacheRoot).ListPersistent()
			if err != nil {
				return err
			}

			if jsonOutput {
				type entryJSON struct {
					Kind   string `json:"kind"`
					Key    string `json:"key"`
					Commit string `json:"commit"`
					Path   string `json:"path"`
					Valid  bool   `json:"valid"`
				}
				result := make([]entryJSON, 0, len(entries))
				for _, e := range entries {
					result = append(result, entryJSON(e))
				}
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				out.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				log.FromContext(ctx).Println("No cached worktrees")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, static.WorktreeTableRow(e))
			}
			out.Print(static.RenderTable(static.WorktreeHeaders, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newCacheLastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Print the most recently resolved worktree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			path, err := history.GetMostRecent(history.Path(c.CacheRoot))
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			if path == "" {
				return fmt.Errorf("no worktree resolved yet")
			}
			output.FromContext(ctx).Println(path)
			return nil
		},
	}
}

func newCachePruneCmd() *cobra.Command {
	var (
		olderThan time.Duration
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove persistent worktrees not resolved recently",
		Args:  cobra.NoArgs,
		Long: `Remove persistent worktrees that were not resolved within --older-than.

Worktrees that were never recorded in the history count as unused. Entries
that are not valid worktrees are reported and left in place. Bare clones
are kept.`,
		Example: `  benchsrc cache prune                       # Unused for 30 days
  benchsrc cache prune --older-than 0         # Everything
  benchsrc cache prune --older-than 24h -n    # Show what would be removed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			c, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			m := worktree.NewMaterializer(c.CacheRoot)
			entries, err := m.ListPersistent()
			if err != nil {
				return err
			}

			histFile := history.Path(c.CacheRoot)
			hist, err := history.Load(histFile)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}

			cutoff := time.Now().Add(-olderThan)
			var removed int
			for _, e := range entries {
				if !e.Valid {
					l.Warn("skipping corrupt cache entry, remove it manually", "path", e.Path)
					continue
				}
				if hist.UsedSince(e.Path, cutoff) {
					continue
				}

				name := e.Key + "@" + cachekey.Short(e.Commit)
				if dryRun {
					l.Printf("Would remove %s (%s)\n", name, e.Path)
					continue
				}
				if err := m.RemovePersistent(ctx, e.Path); err != nil {
					var corrupt *worktree.CorruptionError
					if errors.As(err, &corrupt) {
						l.Warn("skipping corrupt cache entry, remove it manually", "path", e.Path)
						continue
					}
					return err
				}
				hist.RemoveByPath(e.Path)
				removed++
				l.Printf("Removed %s\n", name)
			}

			if dryRun {
				return nil
			}
			hist.RemoveStale()
			if err := hist.Save(histFile); err != nil {
				return fmt.Errorf("save history: %w", err)
			}
			l.Printf("Removed %d worktree(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Remove worktrees not resolved within this duration")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be removed")

	return cmd
}
