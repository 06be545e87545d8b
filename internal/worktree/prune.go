package worktree

import (
	"context"
	"fmt"
	"os"

	"github.com/raphi011/benchsrc/internal/git"
)

// RemovePersistent deletes a persistent worktree and its registration in
// the repository it was created from. Paths that are not valid worktrees
// are refused with a CorruptionError; those are never removed automatically.
func (m *Materializer) RemovePersistent(ctx context.Context, path string) error {
	if !git.IsWorktree(path) {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("remove worktree %s: %w", path, err)
		}
		return &CorruptionError{Path: path, Reason: "missing .git file"}
	}

	src, err := git.MainRepoPath(path)
	if err != nil {
		return &CorruptionError{Path: path, Reason: err.Error()}
	}
	if err := removeWorktree(ctx, src, path); err != nil {
		return fmt.Errorf("remove worktree %s: %w", path, err)
	}
	return nil
}
