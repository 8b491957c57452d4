package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID      = "everline"
	DefaultUpstreamURL     = "https://everlinecu.com/api/api009.json"
	DefaultUpstreamTimeout = 3 * time.Second
	DefaultPollInterval    = 1 * time.Second
	DefaultStaleAfter      = 30 * time.Second
	DefaultServerAddr      = ":8080"
	DefaultMetricsPath     = "/metrics"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Upstream defaults
	if c.Upstream.URL == "" {
		c.Upstream.URL = DefaultUpstreamURL
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.StaleAfter == 0 {
		c.Poller.StaleAfter = DefaultStaleAfter
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
