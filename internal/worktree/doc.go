// Package worktree materializes commits as detached git worktrees.
//
// Persistent worktrees live below the cache root and are reused across
// runs:
//
//	<root>/worktrees/remote/<host>/<path>/<commit>
//	<root>/worktrees/local/<repo>/<commit>
//
// A persistent path that exists without a .git file is reported as a
// [CorruptionError] and never recreated or removed automatically.
// [Materializer.RemovePersistent] deletes valid entries for cache pruning.
//
// Ephemeral worktrees are created in a fresh OS temp directory and removed
// when their [Handle] is released: first through `git worktree remove
// --force`, then by deleting the directory if git fails. Cleanup failures
// are logged as warnings.
package worktree
