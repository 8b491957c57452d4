package api

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultURL is the public Everline realtime endpoint.
const DefaultURL = "https://everlinecu.com/api/api009.json"

// Client fetches train positions from the Everline endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new client for the given endpoint URL.
// An empty URL selects DefaultURL.
func NewClient(url string, opts ...ClientOption) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// URL returns the endpoint the client polls.
func (c *Client) URL() string {
	return c.url
}
