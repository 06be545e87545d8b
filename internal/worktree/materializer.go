package worktree

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"

	"github.com/raphi011/benchsrc/internal/cachekey"
	"github.com/raphi011/benchsrc/internal/git"
	"github.com/raphi011/benchsrc/internal/log"
)

// CreationError reports a failed `git worktree add`.
type CreationError struct {
	Repo   string
	Commit string
	Path   string
	Err    error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create worktree for %s of %s at %s: %v", cachekey.Short(e.Commit), e.Repo, e.Path, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// CorruptionError reports a persistent worktree path that exists but is not
// a valid worktree. It is never treated as a cache miss; the entry has to
// be removed by hand.
type CorruptionError struct {
	Path   string
	Reason string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("path %s exists but is not a valid worktree (%s); remove it manually", e.Path, e.Reason)
}

// Materializer creates detached worktrees, either persistent below
// <root>/worktrees or ephemeral in the OS temp directory.
type Materializer struct {
	root    string
	created atomic.Int64
}

// NewMaterializer returns a materializer for the cache rooted at root.
func NewMaterializer(root string) *Materializer {
	return &Materializer{root: root}
}

// Root returns the cache root directory.
func (m *Materializer) Root() string {
	return m.root
}

// RemotePath is RemotePath below this materializer's root.
func (m *Materializer) RemotePath(remoteURL, commit string) (string, error) {
	return RemotePath(m.root, remoteURL, commit)
}

// LocalPath is LocalPath below this materializer's root.
func (m *Materializer) LocalPath(repoName, commit string) (string, error) {
	return LocalPath(m.root, repoName, commit)
}

// Created returns how many worktrees this materializer has added.
func (m *Materializer) Created() int {
	return int(m.created.Load())
}

// LookupPersistent returns a persistent handle for an existing worktree at
// path. It returns (nil, nil) if nothing exists at path and a
// *CorruptionError if something other than a worktree does.
func (m *Materializer) LookupPersistent(sourceRepo, path string) (*Handle, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat worktree %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, &CorruptionError{Path: path, Reason: "not a directory"}
	}
	if !git.IsWorktree(path) {
		return nil, &CorruptionError{Path: path, Reason: "missing .git file"}
	}
	return newHandle(sourceRepo, path, false), nil
}

// Create checks out commit from repo as a detached worktree.
//
// With ephemeral set, dest is ignored and a fresh temporary directory is
// used. Otherwise dest must not exist yet. The commit is confirmed to exist
// before anything is written; on failure the destination is removed.
func (m *Materializer) Create(ctx context.Context, repo *git.Repository, commit, dest string, ephemeral bool) (*Handle, error) {
	l := log.FromContext(ctx)

	if err := repo.LookupCommit(commit); err != nil {
		return nil, err
	}

	if ephemeral {
		tmp, err := os.MkdirTemp("", "benchsrc-"+cachekey.Short(commit)+"-")
		if err != nil {
			return nil, &CreationError{Repo: repo.Path(), Commit: commit, Path: os.TempDir(), Err: err}
		}
		dest = tmp
	} else {
		if _, err := os.Lstat(dest); err == nil {
			return nil, &CorruptionError{Path: dest, Reason: "already exists"}
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return nil, &CreationError{Repo: repo.Path(), Commit: commit, Path: dest, Err: err}
		}
	}

	l.Printf("Checking out %s into %s\n", cachekey.Short(commit), dest)
	err := git.AddDetachedWorktree(ctx, repo.Path(), dest, commit)
	if err != nil && !ephemeral {
		// A registration whose directory was deleted blocks `worktree add`.
		err = m.retryAfterPrune(ctx, repo.Path(), dest, commit, err)
	}
	if err != nil {
		if rmErr := os.RemoveAll(dest); rmErr != nil {
			l.Warn("failed to remove incomplete worktree", "path", dest, "error", rmErr)
		}
		return nil, &CreationError{Repo: repo.Path(), Commit: commit, Path: dest, Err: err}
	}
	m.created.Add(1)

	return newHandle(repo.Path(), dest, ephemeral), nil
}

// retryAfterPrune drops stale registrations from repoPath and retries the
// checkout once. dest did not exist before the first attempt, so anything
// found there now is leftover from it.
func (m *Materializer) retryAfterPrune(ctx context.Context, repoPath, dest, commit string, addErr error) error {
	l := log.FromContext(ctx)
	l.Debug("worktree add failed, pruning stale registrations", "repo", repoPath, "error", addErr)

	if err := git.PruneWorktrees(ctx, repoPath); err != nil {
		l.Debug("worktree prune failed", "repo", repoPath, "error", err)
		return addErr
	}
	if err := os.RemoveAll(dest); err != nil {
		return addErr
	}
	return git.AddDetachedWorktree(ctx, repoPath, dest, commit)
}

// Entry describes a persistent worktree found on disk.
type Entry struct {
	Kind   string // KindRemote or KindLocal
	Key    string // "<host>/<path>" for remote entries, the repo key for local ones
	Commit string
	Path   string
	Valid  bool // false if the directory is not a worktree
}

// ListPersistent returns all persistent worktrees below the cache root,
// sorted by kind, key and commit.
func (m *Materializer) ListPersistent() ([]Entry, error) {
	var entries []Entry

	// Remote entries are three levels deep, local ones two.
	for _, layout := range []struct {
		kind  string
		depth int
	}{{KindRemote, 3}, {KindLocal, 2}} {
		base := filepath.Join(m.root, WorktreesDir, layout.kind)
		found, err := walkDepth(base, layout.depth)
		if err != nil {
			return nil, err
		}
		for _, rel := range found {
			path := filepath.Join(base, rel)
			entries = append(entries, Entry{
				Kind:   layout.kind,
				Key:    filepath.ToSlash(filepath.Dir(rel)),
				Commit: filepath.Base(rel),
				Path:   path,
				Valid:  git.IsWorktree(path),
			})
		}
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Kind != b.Kind {
			return cmp.Compare(a.Kind, b.Kind)
		}
		if a.Key != b.Key {
			return cmp.Compare(a.Key, b.Key)
		}
		return cmp.Compare(a.Commit, b.Commit)
	})
	return entries, nil
}

// walkDepth returns the paths relative to base of all directories exactly
// depth levels below it. A missing base yields no entries.
func walkDepth(base string, depth int) ([]string, error) {
	level := []string{""}
	for range depth {
		var next []string
		for _, rel := range level {
			dirEntries, err := os.ReadDir(filepath.Join(base, rel))
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("read %s: %w", filepath.Join(base, rel), err)
			}
			for _, e := range dirEntries {
				if e.IsDir() {
					next = append(next, filepath.Join(rel, e.Name()))
				}
			}
		}
		level = next
	}
	return level, nil
}
