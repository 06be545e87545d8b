package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const (
	toolURL = "https://github.com/acme/tool"
	commitA = "1a2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d"
	commitB = "5d6e7f8091a2b3c4d5e6f708192a3b4c5d6e7f80"
)

// worktreePath returns where a persistent remote worktree for commit lives
// below cacheRoot.
func worktreePath(cacheRoot, commit string) string {
	return filepath.Join(cacheRoot, "worktrees", "remote", "github.com", "acme_tool", commit)
}

func TestRecordAccess_PersistentWorktree(t *testing.T) {
	t.Parallel()

	cacheRoot := t.TempDir()
	file := Path(cacheRoot)
	wt := worktreePath(cacheRoot, commitA)

	if err := RecordAccess(wt, toolURL, commitA, file); err != nil {
		t.Fatalf("RecordAccess() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(cacheRoot, FileName)); err != nil {
		t.Fatalf("history file not written below the cache root: %v", err)
	}

	h, err := Load(file)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	e := h.FindByPath(wt)
	if e == nil {
		t.Fatalf("no entry for %s in %+v", wt, h.Entries)
	}
	if e.Repo != toolURL || e.Commit != commitA {
		t.Errorf("entry = (%q, %q), want (%q, %q)", e.Repo, e.Commit, toolURL, commitA)
	}
	if e.AccessCount != 1 || e.LastAccess.IsZero() {
		t.Errorf("entry access = (%d, %v), want one recorded access", e.AccessCount, e.LastAccess)
	}
}

// TestRecord_OneEntryPerCommit verifies that each commit's worktree is
// tracked on its own.
//
// Scenario: Two commits of the same repo are resolved, then the first again
// Expected: Two entries; the first has two accesses and is the most recent
func TestRecord_OneEntryPerCommit(t *testing.T) {
	t.Parallel()

	cacheRoot := t.TempDir()
	wtA := worktreePath(cacheRoot, commitA)
	wtB := worktreePath(cacheRoot, commitB)

	h := &History{}
	h.Record(wtA, toolURL, commitA)
	h.Record(wtB, toolURL, commitB)
	// Push both into the past so the next Record is strictly newer.
	for i := range h.Entries {
		h.Entries[i].LastAccess = time.Now().Add(-time.Duration(i+1) * time.Hour)
	}
	h.Record(wtA, toolURL, commitA)

	if len(h.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(h.Entries))
	}
	if h.Entries[0].Path != wtA || h.Entries[0].AccessCount != 2 {
		t.Errorf("most recent = (%s, %d accesses), want (%s, 2)", h.Entries[0].Path, h.Entries[0].AccessCount, wtA)
	}
	if e := h.FindByPath(wtB); e == nil || e.Commit != commitB || e.AccessCount != 1 {
		t.Errorf("entry for %s = %+v, want commit %s with one access", wtB, e, commitB)
	}
}

func TestRecord_CapEvictsLeastRecent(t *testing.T) {
	t.Parallel()

	cacheRoot := t.TempDir()
	now := time.Now()

	h := &History{}
	for i := range maxEntries {
		commit := fmt.Sprintf("%040x", i)
		h.Entries = append(h.Entries, Entry{
			Path:        worktreePath(cacheRoot, commit),
			Repo:        toolURL,
			Commit:      commit,
			LastAccess:  now.Add(-time.Duration(i+1) * time.Minute),
			AccessCount: 1,
		})
	}
	oldest := h.Entries[maxEntries-1].Path

	fresh := worktreePath(cacheRoot, commitA)
	h.Record(fresh, toolURL, commitA)

	if len(h.Entries) != maxEntries {
		t.Fatalf("got %d entries, want cap of %d", len(h.Entries), maxEntries)
	}
	if h.Entries[0].Path != fresh {
		t.Errorf("newest entry = %s, want %s", h.Entries[0].Path, fresh)
	}
	if h.FindByPath(oldest) != nil {
		t.Errorf("least recently used worktree %s should have been evicted", oldest)
	}
}

// TestUsedSince verifies the age check used when pruning the cache.
//
// Scenario: One worktree was resolved an hour ago, another two days ago
// Expected: With a one day cutoff only the recent one counts as used
func TestUsedSince(t *testing.T) {
	t.Parallel()

	cacheRoot := t.TempDir()
	now := time.Now()
	recent := worktreePath(cacheRoot, commitA)
	idle := worktreePath(cacheRoot, commitB)
	cutoff := now.Add(-24 * time.Hour)

	h := &History{Entries: []Entry{
		{Path: recent, Repo: toolURL, Commit: commitA, LastAccess: now.Add(-time.Hour), AccessCount: 3},
		{Path: idle, Repo: toolURL, Commit: commitB, LastAccess: now.Add(-48 * time.Hour), AccessCount: 9},
	}}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"resolved within cutoff", recent, true},
		{"idle past cutoff", idle, false},
		{"never recorded", worktreePath(cacheRoot, "0000000"), false},
	}
	for _, tt := range tests {
		if got := h.UsedSince(tt.path, cutoff); got != tt.want {
			t.Errorf("%s: UsedSince(%s) = %v, want %v", tt.name, tt.path, got, tt.want)
		}
	}

	h.Entries[1].LastAccess = cutoff
	if h.UsedSince(idle, cutoff) {
		t.Error("an access exactly at the cutoff should not count as used")
	}
}

func TestGetMostRecent(t *testing.T) {
	t.Parallel()

	cacheRoot := t.TempDir()
	file := Path(cacheRoot)

	if got, err := GetMostRecent(file); err != nil || got != "" {
		t.Fatalf("GetMostRecent() on empty cache = (%q, %v), want empty", got, err)
	}

	now := time.Now()
	h := &History{Entries: []Entry{
		{Path: worktreePath(cacheRoot, commitA), Commit: commitA, LastAccess: now.Add(-time.Hour)},
		{Path: worktreePath(cacheRoot, commitB), Commit: commitB, LastAccess: now},
	}}
	if err := h.Save(file); err != nil {
		t.Fatal(err)
	}

	got, err := GetMostRecent(file)
	if err != nil {
		t.Fatalf("GetMostRecent() error = %v", err)
	}
	if want := worktreePath(cacheRoot, commitB); got != want {
		t.Errorf("GetMostRecent() = %q, want %q", got, want)
	}
}

// TestRemoveStale_DeletedWorktree verifies history cleanup after a worktree
// directory is removed outside of benchsrc.
func TestRemoveStale_DeletedWorktree(t *testing.T) {
	t.Parallel()

	cacheRoot := t.TempDir()
	kept := worktreePath(cacheRoot, commitA)
	deleted := worktreePath(cacheRoot, commitB)
	for _, dir := range []string{kept, deleted} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	h := &History{}
	h.Record(kept, toolURL, commitA)
	h.Record(deleted, toolURL, commitB)
	if err := os.RemoveAll(deleted); err != nil {
		t.Fatal(err)
	}

	if n := h.RemoveStale(); n != 1 {
		t.Errorf("RemoveStale() = %d, want 1", n)
	}
	if h.FindByPath(deleted) != nil {
		t.Error("entry for deleted worktree should be gone")
	}
	if h.FindByPath(kept) == nil {
		t.Error("entry for existing worktree should be kept")
	}

	if !h.RemoveByPath(kept) || h.RemoveByPath(kept) {
		t.Error("RemoveByPath should succeed once then report no entry")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	cacheRoot := t.TempDir()

	h, err := Load(Path(cacheRoot))
	if err != nil || len(h.Entries) != 0 {
		t.Errorf("Load() without a history file = (%v, %v), want empty", h, err)
	}

	broken := filepath.Join(cacheRoot, "broken", FileName)
	if err := os.MkdirAll(filepath.Dir(broken), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(broken, []byte("{entries: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(broken); err == nil {
		t.Error("Load() of a corrupt history file should fail")
	}
}
