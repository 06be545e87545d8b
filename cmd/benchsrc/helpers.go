package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/benchsrc/internal/config"
	"github.com/raphi011/benchsrc/internal/history"
	"github.com/raphi011/benchsrc/internal/log"
	"github.com/raphi011/benchsrc/internal/override"
	"github.com/raphi011/benchsrc/internal/repocache"
	"github.com/raphi011/benchsrc/internal/resolve"
	"github.com/raphi011/benchsrc/internal/worktree"
)

// exitCodeError carries a child process exit code back to Execute.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// configFromContext returns the finalized config. Outside of a normal run
// (completion, tests) it falls back to the loaded config, then the defaults.
func configFromContext(ctx context.Context) (*config.Config, error) {
	if c := config.FromContext(ctx); c != nil {
		return c, nil
	}
	if cfg != nil {
		return cfg, nil
	}
	c := config.Default()
	if err := c.Finalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// remoteFlags are the flags shared by commands that resolve a commit.
type remoteFlags struct {
	url  string
	name string
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "remote-url", "", "Remote URL to clone and fetch from")
	cmd.Flags().StringVar(&f.name, "remote-name", "", "Remote name (default from config)")
}

// remoteInfo returns nil when no URL was given, leaving the override table
// as the only source.
func (f *remoteFlags) remoteInfo(ctx context.Context, c *config.Config) *resolve.RemoteInfo {
	if f.url == "" {
		return nil
	}
	name := f.name
	if name == "" {
		name = c.DefaultRemote
	}
	return resolve.NewRemoteInfo(ctx, name, f.url)
}

// newResolver wires the override table and both cache areas under the
// configured cache root.
func newResolver(c *config.Config) (*resolve.Resolver, error) {
	store, err := override.Load(c.OverridesFile)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	return resolve.New(store, repocache.New(c.CacheRoot), worktree.NewMaterializer(c.CacheRoot)), nil
}

// recordResolution notes a persistent worktree in the history so that
// `cache last` and `cache prune` can use it. Failures only warn.
func recordResolution(ctx context.Context, c *config.Config, h *worktree.Handle, repo, commit string) {
	if h.Ephemeral() {
		return
	}
	if err := history.RecordAccess(h.Path(), repo, commit, history.Path(c.CacheRoot)); err != nil {
		log.FromContext(ctx).Warn("failed to record history", "error", err)
	}
}
