package worktree

import (
	"path/filepath"

	"github.com/raphi011/benchsrc/internal/cachekey"
)

// Layout of persistent worktrees below the cache root.
const (
	WorktreesDir = "worktrees"
	KindRemote   = "remote"
	KindLocal    = "local"
)

// RemotePath returns the persistent worktree location for commit of the
// repository cloned from remoteURL:
//
//	<root>/worktrees/remote/<host>/<path>/<commit>
func RemotePath(root, remoteURL, commit string) (string, error) {
	host, path, err := cachekey.SanitizeURL(remoteURL)
	if err != nil {
		return "", err
	}
	safeCommit, err := cachekey.SanitizeCommit(commit)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, WorktreesDir, KindRemote, host, path, safeCommit), nil
}

// LocalPath returns the persistent worktree location for commit of a
// repository that comes from a local override:
//
//	<root>/worktrees/local/<repo>/<commit>
func LocalPath(root, repoName, commit string) (string, error) {
	safeCommit, err := cachekey.SanitizeCommit(commit)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, WorktreesDir, KindLocal, cachekey.SanitizeRepoName(repoName), safeCommit), nil
}
