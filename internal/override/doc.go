// Package override manages the local-path override table.
//
// The table maps repository names to local checkouts that should be used
// instead of cloning from a remote. Each repository may carry a default
// path plus commit-specific paths; a commit entry always wins over the
// default.
//
// # File Format
//
// The table lives in a user-editable TOML file:
//
//	[repositories.acme]
//	_default = "/home/me/src/acme"
//	deadbeefcafe0000000000000000000000000000 = "/home/me/src/acme-old"
//
// A missing file is an empty table. A file that fails to parse is an error
// and never silently replaced.
//
// # Concurrency
//
// [Store] methods serialize through a mutex. [Store.Save] additionally takes
// an advisory flock on "<path>.lock" and writes via temp file and rename.
// Concurrent writers in different processes each write their full in-memory
// table, so the last writer wins; [RecordAndSave] narrows that window by
// reloading immediately before writing.
package override
