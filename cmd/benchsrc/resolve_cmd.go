package main

import (
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/benchsrc/internal/cachekey"
	"github.com/raphi011/benchsrc/internal/log"
	"github.com/raphi011/benchsrc/internal/output"
)

func newResolveCmd() *cobra.Command {
	var (
		remote          remoteFlags
		copyToClipboard bool
	)

	cmd := &cobra.Command{
		Use:     "resolve <repo> <commit>",
		Short:   "Print the path of a cached worktree at a commit",
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(2),
		Long: `Resolve a repository at a commit and print the worktree path.

A matching local override is used as the source when its path exists.
Otherwise the repository is cloned from --remote-url into the cache root
and fetched once if the commit is missing.

The worktree is persistent: later calls with the same repository and
commit return the same path without touching git.`,
		Example: `  benchsrc resolve acme 1a2b3c4 --remote-url https://github.com/acme/acme
  cd $(benchsrc resolve acme 1a2b3c4)       # using a local override
  benchsrc resolve acme 1a2b3c4 --copy      # copy path to clipboard`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			c, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			r, err := newResolver(c)
			if err != nil {
				return err
			}

			repoName, commit := args[0], args[1]
			h, err := r.Resolve(ctx, repoName, commit, remote.remoteInfo(ctx, c), true)
			if err != nil {
				return err
			}
			recordResolution(ctx, c, h, repoName, commit)

			if copyToClipboard {
				if err := clipboard.WriteAll(h.Path()); err != nil {
					l.Warn("failed to copy to clipboard", "error", err)
				}
			}

			if !out.IsTerminal() {
				out.Println(h.Path())
				return nil
			}
			out.Printf("repo:   %s\n", repoName)
			out.Printf("commit: %s\n", cachekey.Short(commit))
			out.Printf("source: %s\n", h.SourceRepo())
			out.Printf("path:   %s\n", h.Path())
			return nil
		},
	}

	remote.register(cmd)
	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy path to clipboard")
	cmd.ValidArgsFunction = completeRepoArg

	return cmd
}
