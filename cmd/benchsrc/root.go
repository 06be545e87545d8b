package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/benchsrc/internal/config"
	"github.com/raphi011/benchsrc/internal/git"
	"github.com/raphi011/benchsrc/internal/log"
	"github.com/raphi011/benchsrc/internal/output"
)

var (
	// Global flags
	verbose       bool
	quiet         bool
	cacheRootFlag string
	overridesFlag string

	// Shared state injected into commands
	cfg *config.Config
)

// Command group IDs for organizing help output
const (
	GroupCore     = "core"
	GroupOverride = "override"
	GroupConfig   = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "benchsrc",
	Short: "Resolve repositories at exact commits for benchmark runs",
	Long: `benchsrc materializes a repository at an exact commit as a git worktree.

Sources are taken from a local override table when one matches, otherwise
from a bare clone kept in the cache root. Worktrees are either persistent
(cached and reused) or ephemeral (removed after use).`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}

		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}

		// Flags are parsed now, so the logger can honor -v/-q.
		ctx := log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet))

		if cfg == nil {
			def := config.Default()
			cfg = &def
		}
		if cacheRootFlag != "" {
			cfg.CacheRoot = cacheRootFlag
		}
		if overridesFlag != "" {
			cfg.OverridesFile = overridesFlag
		}
		if err := cfg.Finalize(); err != nil {
			return err
		}
		cmd.SetContext(config.WithConfig(ctx, cfg))

		if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		return git.CheckGit()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loadedCfg

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = log.WithLogger(ctx, log.New(os.Stderr, false, false))
	ctx = output.WithPrinter(ctx, os.Stdout)

	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			cancel()
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'benchsrc -h' for help")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.PersistentFlags().StringVar(&cacheRootFlag, "cache-root", "", "Cache root (overrides config and "+config.EnvCacheRoot+")")
	rootCmd.PersistentFlags().StringVar(&overridesFlag, "overrides", "", "Override table file (overrides config and "+config.EnvOverrides+")")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupOverride, Title: "Override Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	// Core commands
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newExecCmd())
	rootCmd.AddCommand(newCacheCmd())

	// Override commands
	rootCmd.AddCommand(newOverrideCmd())

	// Config commands
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
}
