// Package config loads and validates the indexer's YAML configuration
// (spec.md §6, "Configuration"), in the style of the teacher's
// node.Config/node.ValidateConfig but backed by gopkg.in/yaml.v3 rather
// than flat JSON tags, matching how the rest of the retrieved corpus reads
// node configuration files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full set of recognized options (spec.md §6).
type Config struct {
	Network         string `yaml:"network"`
	DataDir         string `yaml:"data_dir"`
	StartHeight     uint64 `yaml:"start_height"`
	RequireLegacy   bool   `yaml:"require_legacy"`
	EnabledOps      []string `yaml:"enabled_ops"`
	PrefetchDepth   int    `yaml:"prefetch_depth"`
	PayloadMaxBytes int    `yaml:"payload_max_bytes"`
	PayloadMaxOps   int    `yaml:"payload_max_ops"`
	ReorgDepthLimit uint64 `yaml:"reorg_depth_limit"`

	RetryBackoffMS    int `yaml:"retry_backoff_ms"`
	RetryBackoffMaxMS int `yaml:"retry_backoff_max_ms"`
	RetryMaxAttempts  int `yaml:"retry_max_attempts"`

	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

// Default returns the documented defaults (spec.md §6, §11): payload size
// matches standard relay policy, op cap resolves the Open Question at a
// hard 64, prefetch depth modest enough to bound memory.
func Default() Config {
	c := Config{
		Network:           "mainnet",
		DataDir:           "./data",
		RequireLegacy:     true,
		PrefetchDepth:     8,
		PayloadMaxBytes:   520,
		PayloadMaxOps:     64,
		ReorgDepthLimit:   144,
		RetryBackoffMS:    500,
		RetryBackoffMaxMS: 30_000,
		RetryMaxAttempts:  10,
	}
	c.Log.Level = "info"
	return c
}

// Load reads and validates a YAML config file, overlaying it onto Default().
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var allowedLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {},
}

// Validate checks cfg for internal consistency, grounded on the teacher's
// node.ValidateConfig: one error-returning function, checked once at
// startup, never partially applied.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Network) == "" {
		return fmt.Errorf("network is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}
	if cfg.PrefetchDepth <= 0 {
		return fmt.Errorf("prefetch_depth must be > 0")
	}
	if cfg.PayloadMaxBytes <= 0 {
		return fmt.Errorf("payload_max_bytes must be > 0")
	}
	if cfg.PayloadMaxOps <= 0 {
		return fmt.Errorf("payload_max_ops must be > 0")
	}
	if cfg.RetryBackoffMS <= 0 || cfg.RetryBackoffMaxMS < cfg.RetryBackoffMS {
		return fmt.Errorf("retry_backoff_ms must be > 0 and <= retry_backoff_max_ms")
	}
	if cfg.RetryMaxAttempts <= 0 {
		return fmt.Errorf("retry_max_attempts must be > 0")
	}
	level := strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if _, ok := allowedLogLevels[level]; !ok {
		return fmt.Errorf("invalid log.level %q", cfg.Log.Level)
	}
	return nil
}

// RetryInitialBackoff converts the millisecond config field to a Duration.
func (c Config) RetryInitialBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// RetryMaxBackoff converts the millisecond config field to a Duration.
func (c Config) RetryMaxBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMaxMS) * time.Millisecond
}
