package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/everline-data/internal/model"
)

func dialWS(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial(%s): %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) *model.Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var msg model.SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if msg.Type != model.MessageTypeSnapshot {
		t.Errorf("Type = %q, want %q", msg.Type, model.MessageTypeSnapshot)
	}
	return msg.Snapshot
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Clients() = %d, want %d", h.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_SendsCurrentThenBroadcasts(t *testing.T) {
	s, src, ts := newTestServer(t, true)
	conn := dialWS(t, ts.URL)

	first := readSnapshot(t, conn)
	if first.ID != src.Latest().ID {
		t.Errorf("first frame ID = %s, want current snapshot %s", first.ID, src.Latest().ID)
	}
	if len(first.Records) != 3 {
		t.Errorf("len(Records) = %d, want 3", len(first.Records))
	}

	waitForClients(t, s.Hub(), 1)

	next := testSnapshot(testNow)
	src.snap.Store(next)
	if err := s.Hub().HandleSnapshot(next); err != nil {
		t.Fatalf("HandleSnapshot: %v", err)
	}

	if got := readSnapshot(t, conn); got.ID != next.ID {
		t.Errorf("pushed ID = %s, want %s", got.ID, next.ID)
	}
}

func TestHub_NoSnapshotYet(t *testing.T) {
	s, src, ts := newTestServer(t, false)
	conn := dialWS(t, ts.URL)
	waitForClients(t, s.Hub(), 1)

	snap := testSnapshot(testNow)
	src.snap.Store(snap)
	s.Hub().HandleSnapshot(snap)

	if got := readSnapshot(t, conn); got.ID != snap.ID {
		t.Errorf("first frame ID = %s, want %s", got.ID, snap.ID)
	}
}

func TestHub_Close(t *testing.T) {
	s, _, ts := newTestServer(t, true)
	conn := dialWS(t, ts.URL)
	readSnapshot(t, conn)
	waitForClients(t, s.Hub(), 1)

	s.Hub().Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage error = %v, want going-away close", err)
	}
	if s.Hub().Clients() != 0 {
		t.Errorf("Clients() = %d, want 0", s.Hub().Clients())
	}

	// Late subscribers are turned away.
	late := dialWS(t, ts.URL)
	late.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("late subscriber should be closed")
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://everline.example"})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://everline.example", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		r, _ := http.NewRequest(http.MethodGet, "/v1/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := check(r); got != tt.want {
			t.Errorf("origin %q: got %v, want %v", tt.origin, got, tt.want)
		}
	}

	if !originChecker([]string{"*"})(&http.Request{Header: http.Header{"Origin": {"https://any"}}}) {
		t.Error("wildcard should accept any origin")
	}
}
