package worktree

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/raphi011/benchsrc/internal/git"
	"github.com/raphi011/benchsrc/internal/log"
)

// Handle is a checked-out worktree ready for use.
//
// A persistent handle points into the cache and is left in place on
// release. An ephemeral handle owns a temporary directory that Release
// removes; afterwards Path must no longer be used.
type Handle struct {
	sourceRepo string
	path       string
	ephemeral  bool

	once sync.Once
}

func newHandle(sourceRepo, path string, ephemeral bool) *Handle {
	return &Handle{sourceRepo: sourceRepo, path: path, ephemeral: ephemeral}
}

// Path returns the worktree directory.
func (h *Handle) Path() string { return h.path }

// SourceRepo returns the repository the worktree was created from.
func (h *Handle) SourceRepo() string { return h.sourceRepo }

// Ephemeral reports whether Release deletes the worktree.
func (h *Handle) Ephemeral() bool { return h.ephemeral }

// Join returns rel resolved inside the worktree.
func (h *Handle) Join(rel string) string {
	return filepath.Join(h.path, rel)
}

// Release removes an ephemeral worktree; persistent worktrees are left as is.
// Failures are logged as warnings and never returned. Calling Release more
// than once is a no-op.
func (h *Handle) Release(ctx context.Context) {
	h.once.Do(func() {
		if !h.ephemeral {
			return
		}
		h.removeEphemeral(ctx)
	})
}

// Close is Release with a background context, for use as an io.Closer.
func (h *Handle) Close() error {
	h.Release(context.Background())
	return nil
}

func (h *Handle) removeEphemeral(ctx context.Context) {
	if err := removeWorktree(ctx, h.sourceRepo, h.path); err != nil {
		log.FromContext(ctx).Warn("failed to delete temporary worktree", "path", h.path, "error", err)
		return
	}
	log.FromContext(ctx).Debug("removed temporary worktree", "path", h.path)
}

// removeWorktree unregisters path from sourceRepo and deletes it. A failed
// git removal is only logged; the directory is deleted regardless and the
// dangling registration pruned. Returns the error of deleting the directory.
//
// Cleanup often runs after the caller's context was cancelled (interrupt),
// so git runs detached from its cancellation.
func removeWorktree(ctx context.Context, sourceRepo, path string) error {
	ctx = context.WithoutCancel(ctx)
	l := log.FromContext(ctx)

	gitErr := git.RemoveWorktree(ctx, sourceRepo, path)
	if gitErr != nil {
		l.Warn("failed to remove worktree via git", "path", path, "error", gitErr)
	}

	if err := os.RemoveAll(path); err != nil {
		return err
	}

	if gitErr != nil {
		if err := git.PruneWorktrees(ctx, sourceRepo); err != nil {
			l.Debug("worktree prune failed", "repo", sourceRepo, "error", err)
		}
	}
	return nil
}
