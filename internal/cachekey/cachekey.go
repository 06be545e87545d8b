// Package cachekey derives filesystem-safe cache path components from remote
// URLs, repository names and commit hashes.
//
// The rules are deliberately character-class based rather than tied to how a
// particular URL library normalizes input, so the on-disk layout stays stable:
//
//	https://example.com/acme.git        -> ("example.com", "acme")
//	https://github.com/owner/repo       -> ("github.com", "owner_repo")
//	https://github.com/owner/repo.git   -> ("github.com", "owner_repo")
//	file:///srv/git/tool.git            -> ("local_host", "srv_git_tool")
package cachekey

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// LocalHost is the host component used for URLs without a host (file:// URLs).
const LocalHost = "local_host"

// EmptyPath is the path component used when a URL has no path.
const EmptyPath = "_repo"

// MinCommitLength is the minimum number of alphanumeric characters a commit
// hash must have to be used as a path segment.
const MinCommitLength = 7

// InvalidCommitError reports a commit hash that is too short (after
// filtering) to be used as a cache path component.
type InvalidCommitError struct {
	Commit string
}

func (e *InvalidCommitError) Error() string {
	return fmt.Sprintf("invalid commit hash for path generation: %q (need at least %d alphanumeric characters)", e.Commit, MinCommitLength)
}

// SanitizeURL splits a remote URL into sanitized (host, path) components.
// Host names are case-insensitive and are lower-cased; the path keeps its case.
func SanitizeURL(rawURL string) (host, path string, err error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("parse remote URL %q: %w", rawURL, err)
	}

	host = strings.ToLower(parsed.Hostname())
	if host == "" {
		host = LocalHost
	}
	return SanitizeHost(host), SanitizePath(parsed.Path), nil
}

// SanitizeHost replaces everything except letters, digits and dots with '_'.
func SanitizeHost(host string) string {
	return strings.Map(func(r rune) rune {
		if isAlnum(r) || r == '.' {
			return r
		}
		return '_'
	}, host)
}

// SanitizePath flattens a URL path into a single path segment.
// Applying it to its own output yields the same value.
func SanitizePath(p string) string {
	p = strings.TrimLeft(p, "/")
	p = strings.ReplaceAll(p, "/", "_")
	p = strings.Map(func(r rune) rune {
		if isAlnum(r) || r == '.' || r == '_' {
			return r
		}
		return '_'
	}, p)

	// Strip until no suffix remains, otherwise "x.git.git" would not be a fixed point.
	for strings.HasSuffix(p, "_git") || strings.HasSuffix(p, ".git") {
		p = p[:len(p)-len(".git")]
	}

	if p == "" {
		return EmptyPath
	}
	return p
}

// SanitizeRepoName turns a logical repository name into a single path segment.
func SanitizeRepoName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '.' || r == ' ':
			return '_'
		case isAlnum(r) || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}

// SanitizeCommit keeps only alphanumeric characters of a commit hash and
// rejects results shorter than MinCommitLength.
func SanitizeCommit(commit string) (string, error) {
	safe := strings.Map(func(r rune) rune {
		if isAlnum(r) {
			return r
		}
		return -1
	}, commit)
	if len([]rune(safe)) < MinCommitLength {
		return "", &InvalidCommitError{Commit: commit}
	}
	return safe, nil
}

// Short returns the first seven characters of a commit for display.
func Short(commit string) string {
	if len(commit) <= MinCommitLength {
		return commit
	}
	return commit[:MinCommitLength]
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
