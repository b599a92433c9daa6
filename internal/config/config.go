// Package config loads and persists the sesame TOML configuration and
// resolves XDG-style data locations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all sesame configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Sources []Source      `toml:"sources"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath       string `toml:"db_path,omitempty"`
	DefaultLimit int    `toml:"default_limit,omitempty"`
}

// Source pairs a parser id with a directory of session logs. Unrecognized
// parser ids are skipped by callers.
type Source struct {
	Parser string `toml:"parser"`
	Path   string `toml:"path"`
}

// DefaultConfig returns the configuration used when no file exists:
// Claude Code session logs from the conventional location.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Sources: []Source{
			{Parser: "claude-code", Path: filepath.Join(home, ".claude", "projects")},
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sesame")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sesame")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the index.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "sesame")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "sesame")
}

// DBPath resolves the store file location: the configured override when
// set, else the default under the data directory.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return ExpandHome(c.General.DBPath)
	}
	return filepath.Join(DataDir(), "index.db")
}

// Load reads the config file, returning defaults when it does not exist.
func Load() (Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultConfig().Sources
	}
	return cfg, nil
}

// Save writes the config file, creating the config directory if needed.
func Save(cfg Config) error {
	if err := os.MkdirAll(ConfigDir(), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(), []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandHome resolves a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
