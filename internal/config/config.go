package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Environment variables that override config file settings.
const (
	EnvCacheRoot = "BENCHSRC_CACHE_ROOT"
	EnvOverrides = "BENCHSRC_OVERRIDES"
)

// DefaultRemote is the remote name used when none is configured.
const DefaultRemote = "origin"

// Config holds the benchsrc configuration
type Config struct {
	CacheRoot     string `toml:"cache_root"`
	OverridesFile string `toml:"overrides_file"`
	DefaultRemote string `toml:"default_remote"`
}

// Default returns the default configuration with paths still unexpanded.
func Default() Config {
	return Config{
		CacheRoot:     "~/.cache/benchsrc",
		OverridesFile: "~/.config/benchsrc/localpaths.toml",
		DefaultRemote: DefaultRemote,
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means default)
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the path to the config file
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "benchsrc", "config.toml"), nil
}

// Load reads config from ~/.config/benchsrc/config.toml and applies
// environment overrides.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path and applies environment overrides.
// Returns the defaults if the file doesn't exist (no error).
// Returns error only if the file exists but is invalid.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvCacheRoot); v != "" {
		cfg.CacheRoot = v
	}
	if v := os.Getenv(EnvOverrides); v != "" {
		cfg.OverridesFile = v
	}

	if err := cfg.Finalize(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Finalize validates path settings, expands ~ and fills empty values with
// defaults. Callers that change paths after loading (e.g. from flags) must
// call it again.
func (c *Config) Finalize() error {
	def := Default()
	if c.CacheRoot == "" {
		c.CacheRoot = def.CacheRoot
	}
	if c.OverridesFile == "" {
		c.OverridesFile = def.OverridesFile
	}
	if c.DefaultRemote == "" {
		c.DefaultRemote = def.DefaultRemote
	}

	for _, f := range []struct {
		name  string
		value *string
	}{
		{"cache_root", &c.CacheRoot},
		{"overrides_file", &c.OverridesFile},
	} {
		if err := ValidatePath(*f.value, f.name); err != nil {
			return err
		}
		expanded, err := ExpandPath(*f.value)
		if err != nil {
			return fmt.Errorf("expand %s: %w", f.name, err)
		}
		*f.value = filepath.Clean(expanded)
	}
	return nil
}

type ctxKey struct{}

// WithConfig returns a new context with cfg stored in it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the Config from context.
// Returns nil if no config is stored.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return c
	}
	return nil
}

const defaultConfig = `# benchsrc configuration

# Where bare clones and persistent worktrees are kept
# Must be an absolute path or start with ~ (no relative paths like "." or "..")
# Can be overridden with BENCHSRC_CACHE_ROOT or --cache-root
# cache_root = "~/.cache/benchsrc"

# Local-path override table, maps repositories (and optionally commits)
# to existing checkouts that are used instead of cloning
# Can be overridden with BENCHSRC_OVERRIDES or --overrides
# overrides_file = "~/.config/benchsrc/localpaths.toml"

# Remote name used when --remote-name is not given
# default_remote = "origin"
`

// Init creates a default config file at ~/.config/benchsrc/config.toml
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, InitAt(path, force)
}

// InitAt writes the default config file to path.
func InitAt(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New("config file already exists: " + path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
