package resolve

import (
	"context"
	"fmt"

	"github.com/raphi011/benchsrc/internal/cachekey"
	"github.com/raphi011/benchsrc/internal/git"
	"github.com/raphi011/benchsrc/internal/log"
	"github.com/raphi011/benchsrc/internal/override"
	"github.com/raphi011/benchsrc/internal/repocache"
	"github.com/raphi011/benchsrc/internal/worktree"
)

// NoSourceError reports a repository with no usable local override and no
// remote to clone from.
type NoSourceError struct {
	Repo   string
	Commit string
}

func (e *NoSourceError) Error() string {
	return fmt.Sprintf("no source for %s at %s: no local override and no remote configured", e.Repo, cachekey.Short(e.Commit))
}

// RemoteInfo names the remote a repository is fetched from.
type RemoteInfo struct {
	Name string
	URL  string
}

// NewRemoteInfo returns remote info with SSH URLs rewritten to HTTPS.
// The rewrite is logged as a warning.
func NewRemoteInfo(ctx context.Context, name, url string) *RemoteInfo {
	normalized, converted := git.NormalizeRemoteURL(url)
	if converted {
		log.FromContext(ctx).Warn("converted SSH remote URL to HTTPS", "from", url, "to", normalized)
	}
	return &RemoteInfo{Name: name, URL: normalized}
}

// Resolver turns (repository, commit) pairs into worktrees.
type Resolver struct {
	overrides *override.Store
	repos     *repocache.Cache
	worktrees *worktree.Materializer
}

// New returns a resolver. overrides may be nil to disable local overrides.
func New(overrides *override.Store, repos *repocache.Cache, worktrees *worktree.Materializer) *Resolver {
	return &Resolver{overrides: overrides, repos: repos, worktrees: worktrees}
}

// Resolve returns a worktree of repoName checked out at commit.
//
// A local override is preferred over the remote. With useCache the worktree
// is persistent and reused by later calls; otherwise it is ephemeral and
// the caller must Release it. The persistent cache area is only read or
// written when useCache is set.
func (r *Resolver) Resolve(ctx context.Context, repoName, commit string, remote *RemoteInfo, useCache bool) (*worktree.Handle, error) {
	l := log.FromContext(ctx)

	if _, err := cachekey.SanitizeCommit(commit); err != nil {
		return nil, err
	}

	if r.overrides != nil {
		if localPath, ok := r.overrides.Resolve(repoName, commit); ok {
			if git.IsDir(localPath) {
				l.Debug("using local override", "repo", repoName, "path", localPath)
				return r.fromLocal(ctx, repoName, commit, localPath, useCache)
			}
			l.Warn("local override path does not exist, falling back to remote", "repo", repoName, "path", localPath)
		}
	}

	if remote == nil {
		return nil, &NoSourceError{Repo: repoName, Commit: commit}
	}
	return r.fromRemote(ctx, commit, remote, useCache)
}

func (r *Resolver) fromLocal(ctx context.Context, repoName, commit, localPath string, useCache bool) (*worktree.Handle, error) {
	if !useCache {
		repo, err := git.Open(localPath)
		if err != nil {
			return nil, err
		}
		return r.worktrees.Create(ctx, repo, commit, "", true)
	}

	dest, err := r.worktrees.LocalPath(repoName, commit)
	if err != nil {
		return nil, err
	}
	if h, err := r.worktrees.LookupPersistent(localPath, dest); h != nil || err != nil {
		return h, err
	}

	repo, err := git.Open(localPath)
	if err != nil {
		return nil, err
	}
	return r.worktrees.Create(ctx, repo, commit, dest, false)
}

func (r *Resolver) fromRemote(ctx context.Context, commit string, remote *RemoteInfo, useCache bool) (*worktree.Handle, error) {
	repo, err := r.repos.EnsureClone(ctx, remote.URL)
	if err != nil {
		return nil, err
	}
	repo, err = r.repos.EnsureCommit(ctx, repo, commit, remote.Name, remote.URL)
	if err != nil {
		return nil, err
	}

	if !useCache {
		return r.worktrees.Create(ctx, repo, commit, "", true)
	}

	dest, err := r.worktrees.RemotePath(remote.URL, commit)
	if err != nil {
		return nil, err
	}
	if h, err := r.worktrees.LookupPersistent(repo.Path(), dest); h != nil || err != nil {
		return h, err
	}
	return r.worktrees.Create(ctx, repo, commit, dest, false)
}
