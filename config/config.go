// Package config handles configuration loading and management for callchain.
// Configuration is loaded from:
// 1. ~/.config/callchain/config.yaml (user-level)
// 2. .callchain/config.yaml (project-level override)
// 3. Environment variables (highest priority)
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"callchain/render"
	"callchain/scanner"

	"gopkg.in/yaml.v3"
)

// ProjectConfigPath is the project-level config file, relative to the
// working directory.
var ProjectConfigPath = filepath.Join(".callchain", "config.yaml")

// Config is the main configuration structure.
type Config struct {
	// Language is the source dialect to analyze (default: rust)
	Language string `yaml:"language"`

	// Entry is the symbol the chain starts from (default: main)
	Entry string `yaml:"entry"`

	// Format is the chain rendering: text or mermaid
	Format string `yaml:"format"`

	// Jobs bounds parallel parsing (0 = number of CPUs)
	Jobs int `yaml:"jobs"`

	// SkipIgnored skips build/VCS directories and .gitignore matches
	SkipIgnored bool `yaml:"skip_ignored"`

	// GrammarDir holds extra tree-sitter grammar libraries
	GrammarDir string `yaml:"grammar_dir"`

	// Debug enables verbose logging
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Language: "rust",
		Entry:    "main",
		Format:   string(render.FormatText),
		Jobs:     0, // runtime.NumCPU()
	}
}

// Load reads configuration from standard locations and merges with defaults.
// The result is not validated; callers apply their own overrides first and
// then call Validate.
// Priority (highest to lowest):
// 1. Environment variables
// 2. Project config (.callchain/config.yaml)
// 3. User config (~/.config/callchain/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try user config first
	userConfigPath, err := userConfigPath()
	if err == nil {
		if data, err := os.ReadFile(userConfigPath); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing user config %s: %w", userConfigPath, err)
			}
		}
	}

	// Try project config (overrides user config)
	if data, err := os.ReadFile(ProjectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing project config %s: %w", ProjectConfigPath, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromPath reads configuration from a specific file path. Like Load, it
// leaves validation to the caller.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Language != "" {
		if _, ok := scanner.LookupDialect(c.Language); !ok {
			errs = append(errs, fmt.Sprintf("unknown language: %s (supported: %s)",
				c.Language, strings.Join(scanner.Languages(), ", ")))
		}
	}

	if _, err := render.ParseFormat(c.Format); err != nil {
		errs = append(errs, fmt.Sprintf("unknown format: %s (want text or mermaid)", c.Format))
	}

	if c.Jobs < 0 {
		errs = append(errs, "jobs must be non-negative")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// userConfigPath returns the path to the user configuration file.
func userConfigPath() (string, error) {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "callchain", "config.yaml"), nil
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "callchain", "config.yaml"), nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("CALLCHAIN_LANGUAGE"); v != "" {
		cfg.Language = strings.ToLower(v)
	}

	if v := os.Getenv("CALLCHAIN_ENTRY"); v != "" {
		cfg.Entry = v
	}

	if v := os.Getenv("CALLCHAIN_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}

	if v := os.Getenv("CALLCHAIN_JOBS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CALLCHAIN_JOBS: %w", err)
		}
		cfg.Jobs = n
	}

	if v := os.Getenv("CALLCHAIN_GRAMMAR_DIR"); v != "" {
		cfg.GrammarDir = v
	}

	if v := os.Getenv("CALLCHAIN_SKIP_IGNORED"); v == "1" || strings.ToLower(v) == "true" {
		cfg.SkipIgnored = true
	}

	// Debug
	if v := os.Getenv("CALLCHAIN_DEBUG"); v == "1" || strings.ToLower(v) == "true" {
		cfg.Debug = true
	}

	return nil
}

// WriteDefault creates a default config file at the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Add header comment
	content := "# callchain configuration\n# Values here are overridden by CALLCHAIN_* variables and command-line flags.\n\n" + string(data)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
