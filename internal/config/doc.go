// Package config handles loading and validation of benchsrc configuration.
//
// Configuration is read from ~/.config/benchsrc/config.toml with environment
// variable overrides for path settings.
//
// # Configuration Sources (highest priority first)
//
//   - --cache-root / --overrides flags
//   - BENCHSRC_CACHE_ROOT / BENCHSRC_OVERRIDES env vars
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - cache_root: Root of the clone and worktree cache (default: ~/.cache/benchsrc)
//   - overrides_file: Local-path override table (default: ~/.config/benchsrc/localpaths.toml)
//   - default_remote: Remote name for fetches (default: "origin")
//
// # Path Validation
//
// Paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
