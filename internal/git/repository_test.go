package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resolveTempDir returns a temp directory with symlinks resolved.
// On macOS, t.TempDir() returns /var/... which is a symlink to /private/var/...
func resolveTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("failed to resolve symlinks for %s: %v", tmpDir, err)
	}
	return resolved
}

// configureTestRepo sets git user config and disables GPG signing.
func configureTestRepo(t *testing.T, repoPath string) {
	t.Helper()
	ctx := context.Background()
	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
	} {
		if err := runGit(ctx, repoPath, args...); err != nil {
			t.Fatalf("failed to run git %v: %v", args, err)
		}
	}
}

// setupTestRepo creates a git repo with main branch, initial commit, and git config.
// Returns the resolved repo path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	tmpDir := resolveTempDir(t)
	repoPath := filepath.Join(tmpDir, "test-repo")

	ctx := context.Background()
	if err := runGit(ctx, "", "init", "-b", "main", repoPath); err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	configureTestRepo(t, repoPath)
	commitFile(t, repoPath, "README.md", "# test\n")
	return repoPath
}

// commitFile writes name with content and commits it. Returns the new HEAD.
func commitFile(t *testing.T, repoPath, name, content string) string {
	t.Helper()
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(repoPath, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := runGit(ctx, repoPath, "add", name); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	if err := runGit(ctx, repoPath, "commit", "-m", "update "+name); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return headCommit(t, repoPath)
}

func headCommit(t *testing.T, repoPath string) string {
	t.Helper()
	out, err := outputGit(context.Background(), repoPath, "rev-parse", "HEAD")
	if err != nil {
		t.Fatalf("rev-parse HEAD: %v", err)
	}
	return strings.TrimSpace(string(out))
}

func TestOpen_Regular(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	repo, err := Open(repoPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if repo.Path() != repoPath {
		t.Errorf("Path() = %q, want %q", repo.Path(), repoPath)
	}
	if repo.IsBare() {
		t.Error("IsBare() = true for regular checkout")
	}
}

func TestOpen_Bare(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	barePath := filepath.Join(filepath.Dir(repoPath), "bare.git")
	if err := CloneBare(context.Background(), repoPath, barePath); err != nil {
		t.Fatalf("CloneBare failed: %v", err)
	}

	repo, err := Open(barePath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !repo.IsBare() {
		t.Error("IsBare() = false for bare clone")
	}
	if !repo.HasCommit(headCommit(t, repoPath)) {
		t.Error("bare clone should contain origin HEAD")
	}
}

func TestOpen_NotARepo(t *testing.T) {
	t.Parallel()

	if _, err := Open(resolveTempDir(t)); err == nil {
		t.Error("Open(empty dir) = nil error, want error")
	}
}

func TestLookupCommit(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	head := headCommit(t, repoPath)

	repo, err := Open(repoPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tests := []struct {
		name   string
		commit string
		want   bool
	}{
		{"full hash", head, true},
		{"upper case full hash", strings.ToUpper(head), true},
		{"abbreviated hash", head[:10], true},
		{"unknown full hash", "0123456789abcdef0123456789abcdef01234567", false},
		{"unknown abbreviation", "fffffff", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.LookupCommit(tt.commit)
			if tt.want {
				if err != nil {
					t.Errorf("LookupCommit(%q) = %v, want nil", tt.commit, err)
				}
				return
			}
			var notFound *CommitNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("LookupCommit(%q) = %v, want *CommitNotFoundError", tt.commit, err)
			}
			if notFound.Commit != tt.commit || notFound.Repo != repoPath {
				t.Errorf("error fields = (%q, %q), want (%q, %q)", notFound.Repo, notFound.Commit, repoPath, tt.commit)
			}
		})
	}
}

func TestEnsureRemote(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	repo, err := Open(repoPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	created, err := repo.EnsureRemote("upstream", "https://example.com/acme.git")
	if err != nil {
		t.Fatalf("EnsureRemote failed: %v", err)
	}
	if !created {
		t.Error("first EnsureRemote should create the remote")
	}

	created, err = repo.EnsureRemote("upstream", "https://example.com/other.git")
	if err != nil {
		t.Fatalf("second EnsureRemote failed: %v", err)
	}
	if created {
		t.Error("second EnsureRemote should find the existing remote")
	}

	urls := repo.RemoteURLs("upstream")
	if len(urls) != 1 || urls[0] != "https://example.com/acme.git" {
		t.Errorf("RemoteURLs = %v, want original URL kept", urls)
	}

	// The remote is visible to the git CLI as well.
	out, err := outputGit(context.Background(), repoPath, "remote", "get-url", "upstream")
	if err != nil {
		t.Fatalf("git remote get-url: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "https://example.com/acme.git" {
		t.Errorf("git remote get-url = %q", got)
	}

	if urls := repo.RemoteURLs("missing"); urls != nil {
		t.Errorf("RemoteURLs(missing) = %v, want nil", urls)
	}
}

func TestBranchRefspec(t *testing.T) {
	t.Parallel()

	if got := BranchRefspec("origin"); got != "+refs/heads/*:refs/remotes/origin/*" {
		t.Errorf("BranchRefspec = %q", got)
	}
}
