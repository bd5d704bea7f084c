package config

import (
	"fmt"
	"os"
	"path/filepath"

	"graphtools/internal/domain"
	"graphtools/internal/fsutil"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "GRAPHTOOLS_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "graphtools.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "graphtools"
)

// SearchPaths lists candidate config files in priority order:
//  1. $GRAPHTOOLS_CONFIG
//  2. ./graphtools.yaml
//  3. $XDG_CONFIG_HOME/graphtools/config.yaml
//  4. ~/.config/graphtools/config.yaml
//  5. /etc/graphtools/config.yaml
func SearchPaths() []string {
	var paths []string
	if path := os.Getenv(EnvConfigPath); path != "" {
		paths = append(paths, path)
	}
	paths = append(paths, ConfigFileName)
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns explicit if set, else the first existing search
// path. An explicit path that does not exist is an error; finding nothing
// returns an empty string.
func FindConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if !fsutil.FileExists(explicit) {
			return "", fmt.Errorf("config %s: %w", explicit, domain.ErrInputNotFound)
		}
		return explicit, nil
	}

	for _, path := range SearchPaths() {
		if !fsutil.FileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs, nil
		}
		return path, nil
	}
	return "", nil
}

// DefaultConfigPath returns the preferred location for a new config file
// Prefers XDG config home, falls back to working directory
func DefaultConfigPath() string {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, ConfigDirName, "config.yaml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", ConfigDirName, "config.yaml")
	}
	return ConfigFileName
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}
