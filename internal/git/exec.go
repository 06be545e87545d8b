package git

import (
	"context"

	"github.com/raphi011/benchsrc/internal/cmd"
)

// outputGit runs git against dir (via -C, so relative paths in args stay
// relative to the process working directory) and returns stdout. An empty
// dir runs git without -C, e.g. for clone.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	return cmd.OutputContext(ctx, "", "git", args...)
}

func runGit(ctx context.Context, dir string, args ...string) error {
	_, err := outputGit(ctx, dir, args...)
	return err
}

// RunGitCommand runs an arbitrary git command. Used by tests in other
// packages to build fixture repositories.
func RunGitCommand(ctx context.Context, dir string, args ...string) error {
	return runGit(ctx, dir, args...)
}

// OutputGitCommand is RunGitCommand returning stdout.
func OutputGitCommand(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return outputGit(ctx, dir, args...)
}
