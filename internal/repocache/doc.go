// Package repocache keeps bare clones of remote repositories on disk so
// that repeated resolutions never clone the same remote twice.
//
// Clones are keyed by a sanitized form of the remote URL:
//
//	<root>/repos/<host>/<path>
//
// Missing commits are filled in by a single fetch of all branches plus the
// commit hash itself. The cache is not safe for concurrent use by multiple
// processes.
package repocache
