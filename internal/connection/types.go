package connection

import (
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/everline-data/internal/model"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// DecodeError is reported for a frame that is not a snapshot message.
type DecodeError struct {
	Data []byte
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode frame: %v", e.Err)
	}
	return "decode frame: not a snapshot message"
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Update is one snapshot received from the server.
type Update struct {
	Snapshot   *model.Snapshot
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig holds configuration for a single connection.
type ClientConfig struct {
	URL          string        // ws:// or wss:// URL of /v1/ws
	BufferSize   int           // Pending updates kept for a slow consumer (default: 4)
	WriteTimeout time.Duration // Control frame write timeout (default: 5s)
	PingTimeout  time.Duration // Mark stale if no ping/pong for this long (default: 90s)
}

// DefaultClientConfig returns sensible defaults for url.
func DefaultClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:          url,
		BufferSize:   4,
		WriteTimeout: 5 * time.Second,
		PingTimeout:  90 * time.Second,
	}
}

func (c *ClientConfig) applyDefaults() {
	def := DefaultClientConfig(c.URL)
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = def.PingTimeout
	}
}
