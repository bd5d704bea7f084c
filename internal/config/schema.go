package config

import (
	"time"

	"graphtools/internal/domain"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Limits   domain.Limits  `yaml:"limits"`
	Check    CheckConfig    `yaml:"check"`
	IO       IOConfig       `yaml:"io"`
	Xtrapulp XtrapulpConfig `yaml:"xtrapulp"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Watch    WatchConfig    `yaml:"watch"`
	Log      LogConfig      `yaml:"log"`
}

// CheckConfig controls the graph validator
type CheckConfig struct {
	Mode CheckMode `yaml:"mode"`
	// AllowEdgeCountMismatch downgrades a declared/observed edge count
	// mismatch from an error to a warning
	AllowEdgeCountMismatch bool `yaml:"allow_edge_count_mismatch"`
	Quiet                  bool `yaml:"quiet"`
}

// IOConfig tunes decoding and encoding
type IOConfig struct {
	BufferSize    int    `yaml:"buffer_size"`    // encoder chunk size in bytes
	ProgressEvery uint64 `yaml:"progress_every"` // records between progress reports
}

// XtrapulpConfig holds metis2xtrapulp defaults
type XtrapulpConfig struct {
	IDBits uint `yaml:"id_bits"`
}

// CatalogConfig holds the run catalog settings
type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// WatchConfig holds chkmetis --watch settings
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// LogConfig selects log level and output format
type LogConfig struct {
	Level  string    `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
