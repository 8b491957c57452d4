package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Upstream.URL == "" {
		return errors.New("upstream.url is required")
	}
	u, err := url.Parse(c.Upstream.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("upstream.url must be an absolute http(s) URL, got %q", c.Upstream.URL)
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be > 0")
	}

	if c.Poller.Interval <= 0 {
		return errors.New("poller.interval must be > 0")
	}
	if c.Poller.StaleAfter < c.Poller.Interval {
		return fmt.Errorf("poller.stale_after (%s) cannot be shorter than poller.interval (%s)", c.Poller.StaleAfter, c.Poller.Interval)
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	return nil
}
