package main

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/benchsrc/internal/config"
	"github.com/raphi011/benchsrc/internal/override"
)

// loadOverridesForCompletion reads the override table without failing the
// completion request.
func loadOverridesForCompletion(cmd *cobra.Command) *override.Store {
	c, err := configFromContext(cmd.Context())
	if err != nil {
		return nil
	}
	path := c.OverridesFile
	if f, _ := cmd.Flags().GetString("overrides"); f != "" {
		if expanded, err := config.ExpandPath(f); err == nil {
			path = expanded
		}
	}
	store, err := override.Load(path)
	if err != nil {
		return nil
	}
	return store
}

// completeRepoArg completes repository names from the override table, then
// the commits recorded for that repository.
func completeRepoArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if slices.Contains(args, "--") || len(args) > 1 {
		return nil, cobra.ShellCompDirectiveDefault
	}

	store := loadOverridesForCompletion(cmd)
	if store == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var candidates []string
	if len(args) == 0 {
		candidates = store.Repos()
	} else {
		ro, ok := store.Lookup(args[0])
		if !ok {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		for commit := range ro.CommitPaths {
			candidates = append(candidates, commit)
		}
		slices.Sort(candidates)
	}

	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, toComplete) {
			matches = append(matches, c)
		}
	}
	return matches, cobra.ShellCompDirectiveNoFileComp
}
