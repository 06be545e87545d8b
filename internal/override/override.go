package override

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/raphi011/benchsrc/internal/storage"
)

// DefaultKey is the entry that applies to every commit of a repository with
// no commit-specific override.
const DefaultKey = "_default"

// ParseError reports an override file that exists but cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse local overrides %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RepoOverride holds the overrides of one repository.
type RepoOverride struct {
	CommitPaths map[string]string
	DefaultPath string // empty when unset
}

// Entry is one row of the flattened table as shown by `override list`.
// Commit is DefaultKey for default entries.
type Entry struct {
	Repo   string
	Commit string
	Path   string
}

// fileFormat is the on-disk layout. Within a repository table the
// DefaultKey entry sits beside commit entries.
type fileFormat struct {
	Repositories map[string]map[string]string `toml:"repositories"`
}

// Store is the in-memory override table bound to its backing file.
// It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	path  string
	repos map[string]*RepoOverride
}

// Load reads the override table at path. A missing file yields an empty
// table bound to path; malformed content is a *ParseError.
func Load(path string) (*Store, error) {
	s := &Store{path: path, repos: make(map[string]*RepoOverride)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read local overrides: %w", err)
	}

	var ff fileFormat
	if err := toml.Unmarshal(data, &ff); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	for repo, entries := range ff.Repositories {
		ro := &RepoOverride{CommitPaths: make(map[string]string)}
		for key, p := range entries {
			if key == DefaultKey {
				ro.DefaultPath = p
				continue
			}
			ro.CommitPaths[key] = p
		}
		s.repos[repo] = ro
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Resolve returns the local path for repo at commit: the commit-specific
// entry if present, else the repository default.
func (s *Store) Resolve(repo, commit string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ro, ok := s.repos[repo]
	if !ok {
		return "", false
	}
	if p, ok := ro.CommitPaths[commit]; ok {
		return p, true
	}
	if ro.DefaultPath != "" {
		return ro.DefaultPath, true
	}
	return "", false
}

// Lookup returns a copy of the overrides for repo.
func (s *Store) Lookup(repo string) (RepoOverride, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ro, ok := s.repos[repo]
	if !ok {
		return RepoOverride{}, false
	}
	out := RepoOverride{CommitPaths: make(map[string]string, len(ro.CommitPaths)), DefaultPath: ro.DefaultPath}
	for k, v := range ro.CommitPaths {
		out.CommitPaths[k] = v
	}
	return out, true
}

// Record sets the override for repo at commit, replacing any previous one.
func (s *Store) Record(repo, commit, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo(repo).CommitPaths[commit] = path
}

// RecordDefault sets the default override for repo.
func (s *Store) RecordDefault(repo, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repo(repo).DefaultPath = path
}

// Remove deletes the override for repo at commit. Passing DefaultKey clears
// the default. Returns false if there was nothing to remove.
func (s *Store) Remove(repo, commit string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ro, ok := s.repos[repo]
	if !ok {
		return false
	}
	if commit == DefaultKey {
		if ro.DefaultPath == "" {
			return false
		}
		ro.DefaultPath = ""
	} else {
		if _, ok := ro.CommitPaths[commit]; !ok {
			return false
		}
		delete(ro.CommitPaths, commit)
	}
	if len(ro.CommitPaths) == 0 && ro.DefaultPath == "" {
		delete(s.repos, repo)
	}
	return true
}

// Repos returns the repository names with at least one override, sorted.
func (s *Store) Repos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.repos))
	for name := range s.repos {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Entries returns every override sorted by repository, with the default
// entry first and commits in lexical order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []Entry
	for repo, ro := range s.repos {
		if ro.DefaultPath != "" {
			entries = append(entries, Entry{Repo: repo, Commit: DefaultKey, Path: ro.DefaultPath})
		}
		for commit, p := range ro.CommitPaths {
			entries = append(entries, Entry{Repo: repo, Commit: commit, Path: p})
		}
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Repo != b.Repo {
			return cmp.Compare(a.Repo, b.Repo)
		}
		if a.Commit == DefaultKey {
			return -1
		}
		if b.Commit == DefaultKey {
			return 1
		}
		return cmp.Compare(a.Commit, b.Commit)
	})
	return entries
}

// Save writes the whole table back to the store's path, creating parent
// directories. The write holds an advisory lock on "<path>.lock" and goes
// through a temp file and rename, so readers never see a partial file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create override directory: %w", err)
	}

	lock := newFileLock(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	ff := fileFormat{Repositories: make(map[string]map[string]string, len(s.repos))}
	for repo, ro := range s.repos {
		entries := make(map[string]string, len(ro.CommitPaths)+1)
		for commit, p := range ro.CommitPaths {
			entries[commit] = p
		}
		if ro.DefaultPath != "" {
			entries[DefaultKey] = ro.DefaultPath
		}
		ff.Repositories[repo] = entries
	}

	data, err := toml.Marshal(ff)
	if err != nil {
		return fmt.Errorf("marshal local overrides: %w", err)
	}

	if err := storage.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save local overrides: %w", err)
	}
	return nil
}

// RecordAndSave loads the current table at path, records the override and
// writes it back. Use it when the caller holds no Store of its own.
func RecordAndSave(path, repo, commit, local string) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	s.Record(repo, commit, local)
	return s.Save()
}

// repo returns the override entry for name, creating it. Caller holds mu.
func (s *Store) repo(name string) *RepoOverride {
	ro, ok := s.repos[name]
	if !ok {
		ro = &RepoOverride{CommitPaths: make(map[string]string)}
		s.repos[name] = ro
	}
	return ro
}
