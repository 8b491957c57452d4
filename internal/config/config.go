package config

import "time"

// Config is the root configuration for an Everline tracker instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Poller   PollerConfig   `yaml:"poller"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// InstanceConfig identifies this tracker.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// UpstreamConfig holds the realtime endpoint settings.
type UpstreamConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"` // Per-fetch timeout
}

// PollerConfig holds snapshot poller settings.
type PollerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"` // Health reports degraded past this snapshot age
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"` // nil means enabled
	Path    string `yaml:"path"`
}

// MetricsEnabled reports whether the metrics endpoint should be served.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}
