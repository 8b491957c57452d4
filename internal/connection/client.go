package connection

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/everline-data/internal/model"
)

// Client represents a single WebSocket subscription to the tracker.
type Client interface {
	// Connect establishes the WebSocket connection.
	Connect(ctx context.Context) error

	// Close gracefully closes the connection.
	Close() error

	// Updates returns decoded snapshots. When the consumer falls behind the
	// oldest pending update is dropped.
	Updates() <-chan Update

	// Errors returns decode and connection errors.
	Errors() <-chan error

	// Done is closed when the read loop stops.
	Done() <-chan struct{}

	// IsConnected returns current connection state.
	IsConnected() bool
}

type client struct {
	cfg    ClientConfig
	logger *slog.Logger

	conn *websocket.Conn

	updates  chan Update
	errors   chan error
	done     chan struct{} // closed by Close
	readDone chan struct{} // closed when readLoop exits

	mu         sync.RWMutex
	connected  bool
	lastPingAt time.Time
	closed     bool
}

// NewClient creates a new WebSocket client.
func NewClient(cfg ClientConfig, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	return &client{
		cfg:      cfg,
		logger:   logger,
		updates:  make(chan Update, cfg.BufferSize),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	header := http.Header{}
	header.Set("Accept", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.lastPingAt = time.Now()
	c.mu.Unlock()

	// The hub pings every 30s; answer and remember when.
	conn.SetPingHandler(func(data string) error {
		c.touch()
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(c.cfg.WriteTimeout),
		)
	})

	conn.SetPongHandler(func(string) error {
		c.touch()
		return nil
	})

	go c.readLoop()
	go c.heartbeatLoop()

	c.logger.Debug("websocket connected", "url", c.cfg.URL)

	return nil
}

func (c *client) touch() {
	c.mu.Lock()
	c.lastPingAt = time.Now()
	c.mu.Unlock()
}

// Close gracefully closes the connection.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	close(c.done)

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.cfg.WriteTimeout),
		)
		return conn.Close()
	}

	return nil
}

func (c *client) Updates() <-chan Update {
	return c.updates
}

func (c *client) Errors() <-chan error {
	return c.errors
}

func (c *client) Done() <-chan struct{} {
	return c.readDone
}

func (c *client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// readLoop decodes snapshot frames until the connection fails or is closed.
func (c *client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.readDone)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			select {
			case <-c.done:
			default:
				c.report(err)
			}
			return
		}

		var msg model.SnapshotMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.report(&DecodeError{Data: data, Err: err})
			continue
		}
		if msg.Type != model.MessageTypeSnapshot || msg.Snapshot == nil {
			c.report(&DecodeError{Data: data})
			continue
		}

		c.deliver(Update{Snapshot: msg.Snapshot, ReceivedAt: receivedAt})
	}
}

// deliver queues u, evicting the oldest pending update when full.
// readLoop is the only sender, so the loop terminates.
func (c *client) deliver(u Update) {
	for {
		select {
		case c.updates <- u:
			return
		default:
		}
		select {
		case <-c.updates:
			c.logger.Warn("update buffer full, dropping oldest snapshot")
		default:
		}
	}
}

func (c *client) report(err error) {
	select {
	case c.errors <- err:
	default:
	}
}

// heartbeatLoop pings the server and closes the connection when it goes quiet.
func (c *client) heartbeatLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-c.readDone:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
			}

			c.mu.RLock()
			lastPing := c.lastPingAt
			c.mu.RUnlock()

			if time.Since(lastPing) > c.cfg.PingTimeout {
				c.logger.Warn("no ping received, connection stale",
					"last_ping", lastPing,
					"timeout", c.cfg.PingTimeout,
				)
				c.report(ErrStaleConnection)
				c.conn.Close()
				return
			}
		}
	}
}
