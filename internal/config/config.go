// Package config reads the optional shell configuration from
// $HOME/.aish/config.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the user-tunable shell configuration. A missing file yields
// the defaults; a malformed file is a fatal startup error.
type Config struct {
	Model       string `yaml:"model"`
	MaxTokens   int    `yaml:"maxTokens"`
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"historyFile"`
	LogFile     string `yaml:"logFile"`
	CacheTTL    string `yaml:"cacheTTL"`
	NoCache     bool   `yaml:"noCache"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model:       "gpt-4o-mini",
		MaxTokens:   150,
		Prompt:      "aish> ",
		HistoryFile: "~/.aish_history",
		LogFile:     "~/.aish_log",
		CacheTTL:    "24h",
	}
}

// Load reads $HOME/.aish/config.yml over the defaults.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(filepath.Join(homeDir, ".aish", "config.yml"))
}

// LoadFile reads an explicit config path over the defaults. A missing file
// is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Prompt == "" {
		cfg.Prompt = Default().Prompt
	}
	return cfg, nil
}

// TTL parses the cache TTL, falling back to the default on a bad value.
func (c *Config) TTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// HistoryPath returns the history file with ~ expanded.
func (c *Config) HistoryPath() string {
	return expandHome(c.HistoryFile)
}

// LogPath returns the log file with ~ expanded.
func (c *Config) LogPath() string {
	return expandHome(c.LogFile)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
