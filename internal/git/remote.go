package git

import (
	"context"
	"path/filepath"
	"strings"
)

// CloneBare clones url as a bare repository into dest.
// The parent directory of dest must exist.
func CloneBare(ctx context.Context, url, dest string) error {
	return runGit(ctx, "", "clone", "--bare", url, dest)
}

// Fetch runs a single `git fetch <remote> <refspecs...>` in repoPath.
func Fetch(ctx context.Context, repoPath, remote string, refspecs ...string) error {
	args := append([]string{"fetch", remote}, refspecs...)
	return runGit(ctx, repoPath, args...)
}

// NormalizeRemoteURL rewrites SSH remote URLs to their HTTPS equivalent so
// that clones work without SSH keys:
//
//	git@github.com:owner/repo.git     -> https://github.com/owner/repo.git
//	ssh://git@github.com/owner/repo   -> https://github.com/owner/repo
//
// HTTP(S) URLs and local paths are returned unchanged. The second return
// value reports whether a rewrite happened.
func NormalizeRemoteURL(raw string) (string, bool) {
	u := strings.TrimSpace(raw)

	if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
		return u, false
	}
	if filepath.IsAbs(u) || strings.HasPrefix(u, ".") || strings.Contains(u, `\`) {
		return u, false
	}

	if rest, ok := strings.CutPrefix(u, "ssh://"); ok {
		at := strings.Index(rest, "@")
		if at < 0 {
			return u, false
		}
		hostPath := rest[at+1:]
		if !strings.Contains(hostPath, "/") {
			return u, false
		}
		return "https://" + hostPath, true
	}

	// SCP-like syntax: [user@]host:path
	colon := strings.Index(u, ":")
	if colon <= 0 || colon == len(u)-1 || u[colon+1] == '/' {
		return u, false
	}
	hostStart := 0
	if at := strings.Index(u, "@"); at >= 0 && at < colon {
		hostStart = at + 1
	}
	host, path := u[hostStart:colon], u[colon+1:]
	if host == "" || path == "" {
		return u, false
	}
	return "https://" + host + "/" + path, true
}
