package main

import (
	"fmt"
	"path/filepath"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/raphi011/benchsrc/internal/cachekey"
	"github.com/raphi011/benchsrc/internal/git"
	"github.com/raphi011/benchsrc/internal/log"
	"github.com/raphi011/benchsrc/internal/output"
	"github.com/raphi011/benchsrc/internal/override"
	"github.com/raphi011/benchsrc/internal/ui/static"
)

func newOverrideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "override",
		Short:   "Manage local-path overrides",
		Aliases: []string{"ov"},
		GroupID: GroupOverride,
		Long: `Manage the local-path override table.

An override points a repository (optionally at one commit) to an existing
checkout. Resolution prefers an override over cloning, and a commit entry
over the repository default.`,
		Example: `  benchsrc override set acme 1a2b3c4 ~/src/acme-old
  benchsrc override default acme ~/src/acme
  benchsrc override list
  benchsrc override find acm`,
	}

	cmd.AddCommand(newOverrideSetCmd())
	cmd.AddCommand(newOverrideDefaultCmd())
	cmd.AddCommand(newOverrideRmCmd())
	cmd.AddCommand(newOverrideListCmd())
	cmd.AddCommand(newOverrideFindCmd())

	return cmd
}

// loadOverrides loads the override table named by the config in ctx.
func loadOverrides(cmd *cobra.Command) (*override.Store, error) {
	c, err := configFromContext(cmd.Context())
	if err != nil {
		return nil, err
	}
	return override.Load(c.OverridesFile)
}

// overridePath makes path absolute and warns when it is not a directory.
func overridePath(cmd *cobra.Command, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if !git.IsDir(abs) {
		log.FromContext(cmd.Context()).Warn("override path does not exist, resolution will fall back to the remote", "path", abs)
	}
	return abs, nil
}

func newOverrideSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <repo> <commit> <path>",
		Short: "Use a local checkout for one commit",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			commit := args[1]
			if _, err := cachekey.SanitizeCommit(commit); err != nil {
				return err
			}
			path, err := overridePath(cmd, args[2])
			if err != nil {
				return err
			}
			c, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if err := override.RecordAndSave(c.OverridesFile, args[0], commit, path); err != nil {
				return err
			}
			log.FromContext(cmd.Context()).Printf("Set override %s@%s -> %s\n", args[0], cachekey.Short(commit), path)
			return nil
		},
	}
}

func newOverrideDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default <repo> <path>",
		Short: "Use a local checkout for every commit of a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := overridePath(cmd, args[1])
			if err != nil {
				return err
			}
			store, err := loadOverrides(cmd)
			if err != nil {
				return err
			}
			store.RecordDefault(args[0], path)
			if err := store.Save(); err != nil {
				return err
			}
			log.FromContext(cmd.Context()).Printf("Set default override %s -> %s\n", args[0], path)
			return nil
		},
	}
}

func newOverrideRmCmd() *cobra.Command {
	var isDefault bool

	cmd := &cobra.Command{
		Use:     "rm <repo> [commit]",
		Short:   "Remove an override",
		Aliases: []string{"remove"},
		Args:    cobra.RangeArgs(1, 2),
		Example: `  benchsrc override rm acme 1a2b3c4   # Remove a commit override
  benchsrc override rm acme --default  # Remove the repository default`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := override.DefaultKey
			switch {
			case isDefault && len(args) == 2:
				return fmt.Errorf("--default and a commit are mutually exclusive")
			case !isDefault && len(args) == 1:
				return fmt.Errorf("a commit or --default is required")
			case !isDefault:
				key = args[1]
			}

			store, err := loadOverrides(cmd)
			if err != nil {
				return err
			}
			if !store.Remove(args[0], key) {
				return fmt.Errorf("no override for %s at %s", args[0], key)
			}
			return store.Save()
		},
	}

	cmd.Flags().BoolVar(&isDefault, "default", false, "Remove the repository default")
	cmd.ValidArgsFunction = completeRepoArg

	return cmd
}

func newOverrideListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List overrides",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadOverrides(cmd)
			if err != nil {
				return err
			}
			entries := store.Entries()
			if len(entries) == 0 {
				log.FromContext(cmd.Context()).Println("No overrides configured")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, static.OverrideTableRow(e))
			}
			output.FromContext(cmd.Context()).Print(static.RenderTable(static.OverrideHeaders, rows))
			return nil
		},
	}
}

func newOverrideFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy search repositories with overrides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadOverrides(cmd)
			if err != nil {
				return err
			}

			matches := fuzzy.Find(args[0], store.Repos())
			if len(matches) == 0 {
				return fmt.Errorf("no repository matches %q", args[0])
			}

			entries := store.Entries()
			var rows [][]string
			for _, m := range matches {
				for _, e := range entries {
					if e.Repo == m.Str {
						rows = append(rows, static.OverrideTableRow(e))
					}
				}
			}
			output.FromContext(cmd.Context()).Print(static.RenderTable(static.OverrideHeaders, rows))
			return nil
		},
	}
}
