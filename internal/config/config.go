// Package config provides configuration loading and structs for the Meigen server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "500ms" or "15s" decode.
type Duration time.Duration

// UnmarshalYAML parses a duration string (or integer nanoseconds).
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Source  SourceConfig  `yaml:"source"`
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"index"`
	Search  SearchConfig  `yaml:"search"`
	Stats   StatsConfig   `yaml:"stats"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SourceConfig holds settings for the quote site crawl.
type SourceConfig struct {
	BaseURL     string      `yaml:"base_url"`
	MaxPages    int         `yaml:"max_pages"`
	PageTimeout Duration    `yaml:"page_timeout"`
	PageDelay   Duration    `yaml:"page_delay"`
	Retry       RetryConfig `yaml:"retry"`
}

// RetryConfig holds per-page fetch retry settings.
type RetryConfig struct {
	MaxAttempts  int      `yaml:"max_attempts"`
	InitialDelay Duration `yaml:"initial_delay"`
	MaxDelay     Duration `yaml:"max_delay"`
}

// StorageConfig holds the quote archive location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// IndexConfig holds semantic index build settings.
type IndexConfig struct {
	// LSIDimensions is the reduced rank k of the latent space. Clamped to
	// the attainable rank of the term-document matrix at build time.
	LSIDimensions int `yaml:"lsi_dimensions"`
	// MinDocFreq drops vocabulary terms appearing in fewer documents.
	MinDocFreq int `yaml:"min_doc_freq"`
}

// SearchConfig holds result limit settings.
type SearchConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// StatsConfig holds aggregate view settings.
type StatsConfig struct {
	TopN int `yaml:"top_n"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands the database path. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
