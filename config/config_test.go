package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadOverlaysYAMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "network: signet\ndata_dir: /var/brc20\nprefetch_depth: 16\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Network != "signet" || cfg.DataDir != "/var/brc20" || cfg.PrefetchDepth != 16 {
		t.Fatalf("got %+v", cfg)
	}
	// Fields absent from the overlay keep their defaults.
	if cfg.PayloadMaxBytes != 520 || cfg.ReorgDepthLimit != 144 {
		t.Fatalf("expected defaults preserved, got %+v", cfg)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateTableDriven(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"empty network", func(c *Config) { c.Network = "" }, true},
		{"empty data_dir", func(c *Config) { c.DataDir = "  " }, true},
		{"zero prefetch_depth", func(c *Config) { c.PrefetchDepth = 0 }, true},
		{"negative payload_max_bytes", func(c *Config) { c.PayloadMaxBytes = -1 }, true},
		{"zero payload_max_ops", func(c *Config) { c.PayloadMaxOps = 0 }, true},
		{"retry_backoff_max less than initial", func(c *Config) {
			c.RetryBackoffMS = 1000
			c.RetryBackoffMaxMS = 500
		}, true},
		{"zero retry_max_attempts", func(c *Config) { c.RetryMaxAttempts = 0 }, true},
		{"invalid log level", func(c *Config) { c.Log.Level = "verbose" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRetryBackoffDurations(t *testing.T) {
	cfg := Default()
	cfg.RetryBackoffMS = 250
	cfg.RetryBackoffMaxMS = 5000
	if cfg.RetryInitialBackoff() != 250*time.Millisecond {
		t.Fatalf("got %v", cfg.RetryInitialBackoff())
	}
	if cfg.RetryMaxBackoff() != 5000*time.Millisecond {
		t.Fatalf("got %v", cfg.RetryMaxBackoff())
	}
}
