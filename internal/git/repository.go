package git

import (
	"errors"
	"fmt"
	"slices"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// CommitNotFoundError reports a commit that does not resolve in a repository.
// Err holds the underlying cause, e.g. a failed fetch attempt.
type CommitNotFoundError struct {
	Repo   string
	Commit string
	Err    error
}

func (e *CommitNotFoundError) Error() string {
	msg := fmt.Sprintf("commit %s not found in %s", e.Commit, e.Repo)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CommitNotFoundError) Unwrap() error { return e.Err }

// Repository is an opened repository used for object and config lookups.
// Network operations and worktree changes go through the git CLI instead.
type Repository struct {
	path string
	repo *gogit.Repository
}

// Open opens the repository at path. Both bare repositories and regular
// checkouts (including linked worktrees) are supported.
func Open(path string) (*Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	return &Repository{path: path, repo: repo}, nil
}

// Path returns the path the repository was opened from.
func (r *Repository) Path() string {
	return r.path
}

// IsBare reports whether the repository has no working tree.
func (r *Repository) IsBare() bool {
	_, err := r.repo.Worktree()
	return errors.Is(err, gogit.ErrIsBareRepository)
}

// LookupCommit confirms that commit resolves to a commit object.
// Returns a *CommitNotFoundError otherwise.
func (r *Repository) LookupCommit(commit string) error {
	hash, err := r.resolveHash(commit)
	if err == nil {
		_, err = r.repo.CommitObject(hash)
	}
	if err != nil {
		return &CommitNotFoundError{Repo: r.path, Commit: commit, Err: err}
	}
	return nil
}

// HasCommit is LookupCommit as a boolean.
func (r *Repository) HasCommit(commit string) bool {
	return r.LookupCommit(commit) == nil
}

func (r *Repository) resolveHash(commit string) (plumbing.Hash, error) {
	if isFullHash(commit) {
		return plumbing.NewHash(commit), nil
	}
	h, err := r.repo.ResolveRevision(plumbing.Revision(commit))
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return *h, nil
}

// RemoteURLs returns the configured URLs of a remote, or nil if it doesn't exist.
func (r *Repository) RemoteURLs(name string) []string {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return nil
	}
	return slices.Clone(remote.Config().URLs)
}

// EnsureRemote finds the named remote or creates it pointing at url.
// An existing remote is left untouched even if its URL differs.
// Returns true if the remote was created.
func (r *Repository) EnsureRemote(name, url string) (bool, error) {
	_, err := r.repo.Remote(name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gogit.ErrRemoteNotFound) {
		return false, fmt.Errorf("look up remote %q in %s: %w", name, r.path, err)
	}

	_, err = r.repo.CreateRemote(&config.RemoteConfig{
		Name:  name,
		URLs:  []string{url},
		Fetch: []config.RefSpec{config.RefSpec(BranchRefspec(name))},
	})
	if err != nil {
		return false, fmt.Errorf("add remote %q (%s) to %s: %w", name, url, r.path, err)
	}
	return true, nil
}

// BranchRefspec returns the refspec that maps every remote branch to
// refs/remotes/<remote>/*.
func BranchRefspec(remote string) string {
	return fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", remote)
}

func isFullHash(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range s {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
