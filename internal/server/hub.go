package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/everline-data/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxInboundSize = 512
)

// SnapshotSource provides the latest published snapshot.
type SnapshotSource interface {
	Latest() *model.Snapshot
}

// Hub pushes snapshots to WebSocket subscribers.
// Each subscriber holds at most one pending frame; a slow reader only ever
// receives the newest snapshot.
type Hub struct {
	source   SnapshotSource
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*subscriber]struct{}
	closed  bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// NewHub creates a hub. allowedOrigins follows the CORS list; "*" or an
// empty list accepts any origin.
func NewHub(source SnapshotSource, allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		source:  source,
		logger:  logger,
		clients: make(map[*subscriber]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// HandleSnapshot broadcasts a newly published snapshot.
func (h *Hub) HandleSnapshot(snap *model.Snapshot) error {
	msg, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.clients {
		s.offer(msg)
	}
	return nil
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams snapshots until the peer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s := &subscriber{
		conn: conn,
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}
	if !h.add(s) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Debug("subscriber connected", "remote", r.RemoteAddr, "clients", h.Clients())

	go h.writeLoop(s)
	h.readLoop(s)

	h.logger.Debug("subscriber disconnected", "remote", r.RemoteAddr)
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.clients {
		delete(h.clients, s)
		close(s.done)
	}
}

// add registers s and queues the current snapshot under the same lock, so
// a broadcast can never be overtaken by an older initial frame.
func (h *Hub) add(s *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[s] = struct{}{}

	if snap := h.source.Latest(); snap != nil {
		if msg, err := encodeSnapshot(snap); err == nil {
			s.offer(msg)
		}
	}
	return true
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[s]; ok {
		delete(h.clients, s)
		close(s.done)
	}
}

// readLoop discards inbound frames and keeps the read deadline fresh.
func (h *Hub) readLoop(s *subscriber) {
	defer func() {
		h.remove(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxInboundSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-s.done:
			s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}

// offer replaces any pending frame with msg. Callers hold the hub lock, so
// the write loop is the only other party touching send.
func (s *subscriber) offer(msg []byte) {
	for {
		select {
		case s.send <- msg:
			return
		default:
		}
		select {
		case <-s.send:
		default:
		}
	}
}

func encodeSnapshot(snap *model.Snapshot) ([]byte, error) {
	msg, err := json.Marshal(model.SnapshotMessage{Type: model.MessageTypeSnapshot, Snapshot: snap})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return msg, nil
}
