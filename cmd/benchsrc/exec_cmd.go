package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/benchsrc/internal/cmd"
	"github.com/raphi011/benchsrc/internal/git"
	"github.com/raphi011/benchsrc/internal/log"
)

func newExecCmd() *cobra.Command {
	var (
		remote   remoteFlags
		subdir   string
		useCache bool
	)

	c := &cobra.Command{
		Use:     "exec <repo> <commit> -- <command>",
		Short:   "Run a command in a worktree at a commit",
		Aliases: []string{"x"},
		GroupID: GroupCore,
		Long: `Resolve a repository at a commit and run a command inside it.

By default the worktree is ephemeral and removed when the command exits.
With --cache a persistent worktree is used and kept for later runs.

The command's exit code is passed through.`,
		Example: `  benchsrc exec acme 1a2b3c4 --remote-url https://github.com/acme/acme -- make bench
  benchsrc exec acme 1a2b3c4 --subdir bench -- ./run.sh
  benchsrc exec acme 1a2b3c4 --cache -- git log -1`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			ctx := cobraCmd.Context()
			l := log.FromContext(ctx)

			dashIdx := cobraCmd.ArgsLenAtDash()
			if dashIdx != 2 || len(args) < 2 {
				return fmt.Errorf("usage: benchsrc exec <repo> <commit> -- <command>")
			}
			cmdArgs := args[dashIdx:]
			if len(cmdArgs) == 0 {
				return fmt.Errorf("no command specified (use -- before command)")
			}

			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			r, err := newResolver(cfg)
			if err != nil {
				return err
			}

			h, err := r.Resolve(ctx, args[0], args[1], remote.remoteInfo(ctx, cfg), useCache)
			if err != nil {
				return err
			}
			defer h.Release(ctx)
			recordResolution(ctx, cfg, h, args[0], args[1])

			dir := h.Join(subdir)
			if !git.IsDir(dir) {
				return fmt.Errorf("subdirectory %q does not exist at %s", subdir, args[1])
			}

			l.Debug("exec", "command", cmdArgs[0], "dir", dir, "ephemeral", h.Ephemeral())

			code, err := cmd.RunAttached(ctx, dir, cmd.Streams{
				Stdin:  os.Stdin,
				Stdout: cobraCmd.OutOrStdout(),
				Stderr: cobraCmd.ErrOrStderr(),
			}, cmdArgs[0], cmdArgs[1:]...)
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}

	remote.register(c)
	c.Flags().StringVar(&subdir, "subdir", "", "Run inside this directory of the worktree")
	c.Flags().BoolVar(&useCache, "cache", false, "Use a persistent worktree instead of an ephemeral one")
	c.ValidArgsFunction = completeRepoArg

	return c
}
