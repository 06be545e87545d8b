//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/benchsrc/internal/config"
	"github.com/raphi011/benchsrc/internal/log"
	"github.com/raphi011/benchsrc/internal/output"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// runGitCommand runs a git command in dir and returns trimmed stdout.
func runGitCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("failed to run git %v: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

// setupTestRepo creates a git repo with an initial commit in dir/name.
// Returns the repo path and the commit hash.
func setupTestRepo(t *testing.T, dir, name string) (string, string) {
	t.Helper()

	repoPath := filepath.Join(resolvePath(t, dir), name)
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		t.Fatalf("failed to create repo dir: %v", err)
	}

	runGitCommand(t, repoPath, "init", "-b", "main")
	runGitCommand(t, repoPath, "config", "user.email", "test@test.com")
	runGitCommand(t, repoPath, "config", "user.name", "Test User")
	runGitCommand(t, repoPath, "config", "commit.gpgsign", "false")
	runGitCommand(t, repoPath, "config", "uploadpack.allowAnySHA1InWant", "true")

	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# "+name+"\n"), 0644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(repoPath, "bench"), 0755); err != nil {
		t.Fatalf("failed to create bench dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repoPath, "bench", "run.txt"), []byte("bench\n"), 0644); err != nil {
		t.Fatalf("failed to write bench file: %v", err)
	}
	runGitCommand(t, repoPath, "add", ".")
	runGitCommand(t, repoPath, "commit", "-m", "Initial commit")

	return repoPath, runGitCommand(t, repoPath, "rev-parse", "HEAD")
}

// testEnv holds the config and captured streams of a command run.
type testEnv struct {
	cfg    *config.Config
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns a config with cache root and override table in a
// fresh temp directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := resolvePath(t, t.TempDir())
	return &testEnv{
		cfg: &config.Config{
			CacheRoot:     filepath.Join(dir, "cache"),
			OverridesFile: filepath.Join(dir, "localpaths.toml"),
			DefaultRemote: config.DefaultRemote,
		},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
}

// context builds a command context writing to the env's buffers.
func (e *testEnv) context(verbose bool) context.Context {
	ctx := context.Background()
	ctx = config.WithConfig(ctx, e.cfg)
	ctx = log.WithLogger(ctx, log.New(e.stderr, verbose, false))
	ctx = output.WithPrinter(ctx, e.stdout)
	return ctx
}
