// Package history records which cached worktrees were resolved and when.
// It backs `benchsrc cache last` and the age check of `benchsrc cache prune`.
package history

import (
	"cmp"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/raphi011/benchsrc/internal/storage"
)

// FileName is the history file below the cache root.
const FileName = "history.json"

const maxEntries = 500

// Entry is one resolved worktree.
type Entry struct {
	Path        string    `json:"path"`
	Repo        string    `json:"repo"`
	Commit      string    `json:"commit"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// History is the list of resolved worktrees, most recent first after
// Record.
type History struct {
	Entries []Entry `json:"entries"`
}

// Path returns the history file for cacheRoot.
func Path(cacheRoot string) string {
	return filepath.Join(cacheRoot, FileName)
}

// Load reads the history from file. A missing file yields an empty history.
func Load(file string) (*History, error) {
	var h History
	if err := storage.LoadJSON(file, &h); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &History{}, nil
		}
		return nil, err
	}
	return &h, nil
}

// Save writes the history to file atomically.
func (h *History) Save(file string) error {
	return storage.SaveJSON(file, h)
}

// Record marks path as accessed now, adding it if unknown. The oldest
// entries are dropped once the history exceeds its cap.
func (h *History) Record(path, repo, commit string) {
	now := time.Now()
	if e := h.FindByPath(path); e != nil {
		e.Repo = repo
		e.Commit = commit
		e.LastAccess = now
		e.AccessCount++
	} else {
		h.Entries = append(h.Entries, Entry{
			Path:        path,
			Repo:        repo,
			Commit:      commit,
			LastAccess:  now,
			AccessCount: 1,
		})
	}

	h.SortByRecency()
	if len(h.Entries) > maxEntries {
		h.Entries = h.Entries[:maxEntries]
	}
}

// SortByRecency orders entries most recently accessed first.
func (h *History) SortByRecency() {
	slices.SortStableFunc(h.Entries, func(a, b Entry) int {
		return cmp.Compare(b.LastAccess.UnixNano(), a.LastAccess.UnixNano())
	})
}

// FindByPath returns the entry for path, or nil.
func (h *History) FindByPath(path string) *Entry {
	for i := range h.Entries {
		if h.Entries[i].Path == path {
			return &h.Entries[i]
		}
	}
	return nil
}

// UsedSince reports whether path was resolved after cutoff. Worktrees
// without a history entry count as unused.
func (h *History) UsedSince(path string, cutoff time.Time) bool {
	e := h.FindByPath(path)
	return e != nil && e.LastAccess.After(cutoff)
}

// RemoveByPath drops the entry for path. Returns false if there was none.
func (h *History) RemoveByPath(path string) bool {
	for i := range h.Entries {
		if h.Entries[i].Path == path {
			h.Entries = slices.Delete(h.Entries, i, i+1)
			return true
		}
	}
	return false
}

// RemoveStale drops entries whose path no longer exists and returns how
// many were removed.
func (h *History) RemoveStale() int {
	before := len(h.Entries)
	h.Entries = slices.DeleteFunc(h.Entries, func(e Entry) bool {
		_, err := os.Stat(e.Path)
		return err != nil
	})
	return before - len(h.Entries)
}

// RecordAccess loads the history at file, records path and saves it.
func RecordAccess(path, repo, commit, file string) error {
	h, err := Load(file)
	if err != nil {
		return err
	}
	h.Record(path, repo, commit)
	return h.Save(file)
}

// GetMostRecent returns the most recently resolved worktree path.
// Returns empty string if no history exists.
func GetMostRecent(file string) (string, error) {
	h, err := Load(file)
	if err != nil {
		return "", err
	}
	h.SortByRecency()
	if len(h.Entries) == 0 {
		return "", nil
	}
	return h.Entries[0].Path, nil
}
