// Package git provides the git operations used to cache and materialize
// source trees.
//
// Object and config lookups go through go-git ([Open], [Repository]) so
// commit existence checks and remote setup don't need a subprocess.
// Anything that touches the network or a worktree shells out to the git CLI,
// which keeps user configuration (credential helpers, SSH keys, proxies) in
// effect.
//
// # Repository Operations
//
//   - [Open]: Open a bare or regular repository
//   - [Repository.LookupCommit], [Repository.HasCommit]: Commit existence
//   - [Repository.EnsureRemote]: Find-or-create a named remote
//   - [CloneBare], [Fetch]: Network operations
//   - [NormalizeRemoteURL]: Rewrite SSH remotes to HTTPS
//
// # Worktree Operations
//
//   - [AddDetachedWorktree]: Check out a commit as a detached linked worktree
//   - [RemoveWorktree]: Force-remove a linked worktree
//   - [ListWorktrees]: Parse `git worktree list --porcelain`
//   - [IsWorktree], [MainRepoPath]: Inspect a worktree directory on disk
package git
