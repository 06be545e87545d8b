// Package resolve turns a (repository, commit) pair into a worktree.
//
// # Source Selection
//
// A Resolver consults the local override table first. A commit-specific
// entry wins over the repository default, and an entry is only used if its
// path is an existing directory. Otherwise the repository is taken from a
// bare clone of the remote, which is fetched at most once per call when the
// commit is missing.
//
// # Cache Modes
//
// With useCache the worktree is persistent:
//
//   - remote sources: <cache_root>/worktrees/remote/<host>/<path>/<commit>
//   - local sources:  <cache_root>/worktrees/local/<repo>/<commit>
//
// and later calls return the same path without running git. Without it the
// worktree is created in a temporary directory and removed when the handle
// is released. Ephemeral resolution never reads or writes the persistent
// area.
//
// # Errors
//
// Every failure aborts the call and is returned as a typed error
// (NoSourceError, repocache.CloneError, git.CommitNotFoundError,
// worktree.CreationError, worktree.CorruptionError) carrying the repository,
// commit or path involved. Callers processing a batch are expected to skip
// the failing item and continue.
package resolve
