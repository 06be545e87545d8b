package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WorktreeInfo is one entry of `git worktree list --porcelain`.
type WorktreeInfo struct {
	Path       string
	CommitHash string
	Branch     string // "(detached)" for detached HEAD, empty for bare entries
	Bare       bool
}

// AddDetachedWorktree checks out commit at dest as a linked worktree of
// repoPath with a detached HEAD. dest must not exist or be empty.
func AddDetachedWorktree(ctx context.Context, repoPath, dest, commit string) error {
	return runGit(ctx, repoPath, "worktree", "add", "--detach", dest, commit)
}

// RemoveWorktree force-removes the linked worktree at path from repoPath,
// discarding any local modifications inside it.
func RemoveWorktree(ctx context.Context, repoPath, path string) error {
	return runGit(ctx, repoPath, "worktree", "remove", "--force", path)
}

// PruneWorktrees drops administrative entries for worktrees whose
// directories no longer exist.
func PruneWorktrees(ctx context.Context, repoPath string) error {
	return runGit(ctx, repoPath, "worktree", "prune")
}

// ListWorktrees returns all worktrees registered in repoPath.
func ListWorktrees(ctx context.Context, repoPath string) ([]WorktreeInfo, error) {
	output, err := outputGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	return parseWorktreeList(string(output)), nil
}

func parseWorktreeList(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo
	var current WorktreeInfo

	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			if current.Path != "" {
				worktrees = append(worktrees, current)
			}
			current = WorktreeInfo{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "HEAD "):
			current.CommitHash = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch refs/heads/"):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "detached":
			current.Branch = "(detached)"
		case line == "bare":
			current.Bare = true
		}
	}

	if current.Path != "" {
		worktrees = append(worktrees, current)
	}
	return worktrees
}

// IsWorktree reports whether path is a directory holding a linked worktree:
// its .git entry is a regular file pointing back at the owning repository.
func IsWorktree(path string) bool {
	if !IsDir(path) {
		return false
	}
	info, err := os.Stat(filepath.Join(path, ".git"))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// MainRepoPath returns the repository a linked worktree belongs to.
// For a bare repository that is the repository directory itself, for a
// regular checkout it is the directory containing .git.
func MainRepoPath(worktreePath string) (string, error) {
	content, err := os.ReadFile(filepath.Join(worktreePath, ".git"))
	if err != nil {
		return "", fmt.Errorf("failed to read .git file: %w", err)
	}

	// Only the first line matters: "gitdir: /path/to/repo/worktrees/name"
	line, _, _ := strings.Cut(string(content), "\n")
	line = strings.TrimSpace(line)
	gitdir, ok := strings.CutPrefix(line, "gitdir: ")
	if !ok || gitdir == "" {
		return "", fmt.Errorf("invalid .git file format: expected 'gitdir: <path>'")
	}
	if !filepath.IsAbs(gitdir) {
		gitdir = filepath.Join(worktreePath, gitdir)
	}
	gitdir = filepath.Clean(gitdir)

	common := filepath.Dir(filepath.Dir(gitdir))
	if raw, err := os.ReadFile(filepath.Join(gitdir, "commondir")); err == nil {
		dir := strings.TrimSpace(string(raw))
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(gitdir, dir)
		}
		common = filepath.Clean(dir)
	}

	if filepath.Base(common) == ".git" {
		return filepath.Dir(common), nil
	}
	return common, nil
}
