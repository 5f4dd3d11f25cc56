// Package config loads the server configuration from YAML.
//
// The choice of persistence backend is an explicit configuration value
// injected into the store constructor at startup - never ambient
// global state - so tests can substitute a fake adapter.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend names a persistence implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite" // durable document store
	BackendMemory Backend = "memory" // process-local, lost on restart
	BackendNone   Backend = "none"   // degraded mode: defaults only
)

// Config is the top-level recon.yaml configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Recon   ReconConfig   `yaml:"recon,omitempty"`
}

// ServerConfig holds the HTTP listener options.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// ReconConfig tunes the reconciliation engine.
type ReconConfig struct {
	// VarianceThreshold is the percent magnitude above which a
	// month-over-month change is flagged. Zero means the default (10).
	VarianceThreshold float64 `yaml:"variance_threshold,omitempty"`
}

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	Backend Backend `yaml:"backend"`
	// Path is the SQLite database file. ":memory:" is accepted.
	Path string `yaml:"path,omitempty"`
}

// Load reads a config file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new install.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "recon.db",
		},
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite backend")
		}
	case BackendMemory, BackendNone:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Recon.VarianceThreshold < 0 {
		return fmt.Errorf("recon.variance_threshold must not be negative")
	}
	return nil
}
