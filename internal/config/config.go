// Package config loads and saves ccexport configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all ccexport configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	TUI     TUIConfig     `toml:"tui"`
}

// GeneralConfig holds input discovery and export preferences.
type GeneralConfig struct {
	InputDir string `toml:"input_dir"`
	Title    string `toml:"title"`
}

// TUIConfig holds picker settings.
type TUIConfig struct {
	PageSize     int `toml:"page_size"`
	PreviewWidth int `toml:"preview_width"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			InputDir: "~/.claude/projects",
			Title:    "Claude Code Conversations",
		},
		TUI: TUIConfig{
			PageSize:     15,
			PreviewWidth: 80,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccexport")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ccexport")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyFloors()
	return cfg, nil
}

// LoadOrDefault loads the config, falling back to defaults on any error so
// callers that must not fail (the picker) can always start.
func LoadOrDefault() Config {
	cfg, err := Load()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// ExpandHome expands a leading "~" in path to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

func (c *Config) applyFloors() {
	if c.TUI.PageSize < 1 {
		c.TUI.PageSize = 15
	}
	if c.TUI.PreviewWidth < 10 {
		c.TUI.PreviewWidth = 80
	}
}
