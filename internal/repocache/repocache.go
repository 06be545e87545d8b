package repocache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphi011/benchsrc/internal/cachekey"
	"github.com/raphi011/benchsrc/internal/git"
	"github.com/raphi011/benchsrc/internal/log"
)

// ReposDir is the subdirectory of the cache root holding bare clones.
const ReposDir = "repos"

// CloneError reports a failed `git clone --bare`.
type CloneError struct {
	URL  string
	Path string
	Err  error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("clone %s into %s: %v", e.URL, e.Path, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// FetchError reports a failed fetch attempt. It is never returned on its own;
// it is the cause inside a *git.CommitNotFoundError when the commit could
// not be found because the fetch itself failed.
type FetchError struct {
	Remote string
	Commit string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Commit, e.Remote, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Cache manages bare clones under <root>/repos/<host>/<path>.
// Entries are never removed.
type Cache struct {
	root string
}

// New returns a cache rooted at root.
func New(root string) *Cache {
	return &Cache{root: root}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// PathFor returns where the bare clone of remoteURL lives. It performs no I/O.
func (c *Cache) PathFor(remoteURL string) (string, error) {
	host, path, err := cachekey.SanitizeURL(remoteURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.root, ReposDir, host, path), nil
}

// EnsureClone returns the bare clone of remoteURL, cloning it first if the
// cache path holds no repository. A failed clone removes the directory it
// created; a pre-existing directory at the cache path is left untouched.
func (c *Cache) EnsureClone(ctx context.Context, remoteURL string) (*git.Repository, error) {
	l := log.FromContext(ctx)

	path, err := c.PathFor(remoteURL)
	if err != nil {
		return nil, err
	}

	if git.LooksLikeRepo(path) {
		l.Debug("using cached clone", "url", remoteURL, "path", path)
		return git.Open(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &CloneError{URL: remoteURL, Path: path, Err: err}
	}

	// Anything already at path is not ours to clean up.
	_, statErr := os.Lstat(path)
	existed := statErr == nil

	l.Printf("Cloning %s into %s\n", remoteURL, path)
	if err := git.CloneBare(ctx, remoteURL, path); err != nil {
		if !existed {
			if rmErr := os.RemoveAll(path); rmErr != nil {
				l.Warn("failed to remove partial clone", "path", path, "error", rmErr)
			}
		}
		return nil, &CloneError{URL: remoteURL, Path: path, Err: err}
	}

	return git.Open(path)
}

// EnsureCommit makes sure commit is present in repo. If it is missing, the
// named remote is created when absent and a single fetch of all branches
// plus the commit itself is attempted. Returns the repository re-opened
// after the fetch.
//
// When the commit is still missing the result is a *git.CommitNotFoundError;
// its cause is a *FetchError if the fetch command failed.
func (c *Cache) EnsureCommit(ctx context.Context, repo *git.Repository, commit, remoteName, remoteURL string) (*git.Repository, error) {
	l := log.FromContext(ctx)

	if repo.HasCommit(commit) {
		return repo, nil
	}

	created, err := repo.EnsureRemote(remoteName, remoteURL)
	if err != nil {
		return nil, err
	}
	if created {
		l.Debug("added remote", "name", remoteName, "url", remoteURL, "repo", repo.Path())
	}

	l.Printf("Fetching %s from %s\n", cachekey.Short(commit), remoteName)
	var fetchErr error
	if err := git.Fetch(ctx, repo.Path(), remoteName, git.BranchRefspec(remoteName), commit); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		fetchErr = &FetchError{Remote: remoteName, Commit: commit, Err: err}
		l.Warn("fetch failed", "remote", remoteName, "commit", commit, "error", err)
	}

	// Objects written by the fetch are not visible through the old handle.
	reopened, err := git.Open(repo.Path())
	if err != nil {
		return nil, err
	}

	if err := reopened.LookupCommit(commit); err != nil {
		var notFound *git.CommitNotFoundError
		if errors.As(err, &notFound) && fetchErr != nil {
			notFound.Err = fetchErr
		}
		return nil, err
	}
	return reopened, nil
}
