package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-tracker
upstream:
  url: http://localhost:9999/api009.json
  timeout: 2s
poller:
  interval: 5s
server:
  addr: 127.0.0.1:9000
  allowed_origins: ["https://example.com"]
metrics:
  enabled: false
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-tracker" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-tracker")
	}
	if cfg.Upstream.URL != "http://localhost:9999/api009.json" {
		t.Errorf("Upstream.URL = %q, want %q", cfg.Upstream.URL, "http://localhost:9999/api009.json")
	}
	if cfg.Upstream.Timeout != 2*time.Second {
		t.Errorf("Upstream.Timeout = %v, want %v", cfg.Upstream.Timeout, 2*time.Second)
	}
	if cfg.Poller.Interval != 5*time.Second {
		t.Errorf("Poller.Interval = %v, want %v", cfg.Poller.Interval, 5*time.Second)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("Server.AllowedOrigins = %v, want [https://example.com]", cfg.Server.AllowedOrigins)
	}
	if cfg.MetricsEnabled() {
		t.Error("MetricsEnabled() = true, want false")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_EVERLINE_URL", "https://mirror.example.com/api009.json")

	yaml := `
upstream:
  url: ${TEST_EVERLINE_URL}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Upstream.URL != "https://mirror.example.com/api009.json" {
		t.Errorf("Upstream.URL = %q, want %q", cfg.Upstream.URL, "https://mirror.example.com/api009.json")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Errorf("Load(missing) error = %v, want read config file error", err)
	}

	path := writeTempFile(t, "poller: [not, a, map]")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config yaml") {
		t.Errorf("Load(bad yaml) error = %v, want parse error", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-tracker
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Instance.ID != "test-tracker" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-tracker")
	}
	if cfg.Upstream.URL != DefaultUpstreamURL {
		t.Errorf("Upstream.URL = %q, want default %q", cfg.Upstream.URL, DefaultUpstreamURL)
	}
	if cfg.Upstream.Timeout != DefaultUpstreamTimeout {
		t.Errorf("Upstream.Timeout = %v, want default %v", cfg.Upstream.Timeout, DefaultUpstreamTimeout)
	}
	if cfg.Poller.Interval != DefaultPollInterval {
		t.Errorf("Poller.Interval = %v, want default %v", cfg.Poller.Interval, DefaultPollInterval)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, DefaultServerAddr)
	}
	if !cfg.MetricsEnabled() {
		t.Error("MetricsEnabled() = false, want default true")
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want default %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
}

func TestLoadAndValidate_NoFile(t *testing.T) {
	cfg, err := LoadAndValidate("")
	if err != nil {
		t.Fatalf("LoadAndValidate(\"\") failed: %v", err)
	}
	if cfg.Upstream.Timeout != 3*time.Second || cfg.Poller.Interval != time.Second {
		t.Errorf("defaults = %v / %v, want 3s / 1s", cfg.Upstream.Timeout, cfg.Poller.Interval)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return Default() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *Config) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "relative upstream url",
			mutate:  func(c *Config) { c.Upstream.URL = "api009.json" },
			wantErr: `upstream.url must be an absolute http(s) URL, got "api009.json"`,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Upstream.Timeout = 0 },
			wantErr: "upstream.timeout must be > 0",
		},
		{
			name:    "negative interval",
			mutate:  func(c *Config) { c.Poller.Interval = -time.Second },
			wantErr: "poller.interval must be > 0",
		},
		{
			name: "stale_after shorter than interval",
			mutate: func(c *Config) {
				c.Poller.Interval = 10 * time.Second
				c.Poller.StaleAfter = 5 * time.Second
			},
			wantErr: "poller.stale_after (5s) cannot be shorter than poller.interval (10s)",
		},
		{
			name:    "metrics path",
			mutate:  func(c *Config) { c.Metrics.Path = "metrics" },
			wantErr: `metrics.path must start with /, got "metrics"`,
		},
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
