// Package config provides configuration management for graphtools.
//
// Config file locations (priority order):
//  1. --config flag
//  2. $GRAPHTOOLS_CONFIG
//  3. ./graphtools.yaml
//  4. $XDG_CONFIG_HOME/graphtools/config.yaml
//  5. ~/.config/graphtools/config.yaml
//  6. /etc/graphtools/config.yaml
//
// Command line flags override file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"graphtools/internal/domain"
	"graphtools/internal/progress"
)

const (
	defaultCatalogPath = "./graphtools.db"
	defaultDebounce    = 500 * time.Millisecond
	defaultBufferSize  = 1 << 20
)

// Load finds and loads the config file, or returns defaults if none found
func Load(explicit string) (*Config, string, error) {
	path, err := FindConfigPath(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w: %v", domain.ErrUsage, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("config %s: %w", path, err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns the settings used when no file is found
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Limits.IDBits == 0 {
		c.Limits.IDBits = 64
	}
	if c.Limits.WeightBits == 0 {
		c.Limits.WeightBits = 64
	}
	c.Check.Mode = ParseCheckMode(string(c.Check.Mode))
	if c.IO.BufferSize == 0 {
		c.IO.BufferSize = defaultBufferSize
	}
	if c.IO.ProgressEvery == 0 {
		c.IO.ProgressEvery = progress.DefaultEvery
	}
	if c.Xtrapulp.IDBits == 0 {
		c.Xtrapulp.IDBits = 32
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = defaultCatalogPath
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(defaultDebounce)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Format = ParseLogFormat(string(c.Log.Format))
}

// Validate rejects settings no component can honour
func (c *Config) Validate() error {
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits: %w: %v", domain.ErrUsage, err)
	}
	if c.Xtrapulp.IDBits != 32 && c.Xtrapulp.IDBits != 64 {
		return fmt.Errorf("xtrapulp.id_bits must be 32 or 64, got %d: %w", c.Xtrapulp.IDBits, domain.ErrUsage)
	}
	if c.IO.BufferSize < 4096 {
		return fmt.Errorf("io.buffer_size must be at least 4096, got %d: %w", c.IO.BufferSize, domain.ErrUsage)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w: %v", domain.ErrUsage, err)
	}
	return nil
}

// NewLogger builds a logrus logger from the log section
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w: %v", domain.ErrUsage, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	if c.Log.Format == LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return logger, nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Limits: %s, Check: %s", c.Limits, c.Check.Mode)
	if c.Check.AllowEdgeCountMismatch {
		summary += " (edge count mismatch allowed)"
	}
	summary += fmt.Sprintf("\nBuffer: %d bytes, progress every %d records, xtrapulp ids: %d bit",
		c.IO.BufferSize, c.IO.ProgressEvery, c.Xtrapulp.IDBits)
	if c.Catalog.Enabled {
		summary += fmt.Sprintf("\nCatalog: %s", c.Catalog.Path)
	}
	return summary
}
