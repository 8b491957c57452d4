package connection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/everline-data/internal/model"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func snapshotFrame(t *testing.T, trainNo string) ([]byte, *model.Snapshot) {
	t.Helper()
	snap := model.NewSnapshot([]model.TrainRecord{
		{TrainNo: trainNo, Direction: model.Down, StationCode: "Y114", Status: model.Stopped},
	}, time.Now())
	data, err := json.Marshal(model.SnapshotMessage{Type: model.MessageTypeSnapshot, Snapshot: snap})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data, snap
}

// drain reads until the peer goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestClient_ConnectClose(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	client := NewClient(DefaultClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !client.IsConnected() {
		t.Error("expected IsConnected to return true")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if client.IsConnected() {
		t.Error("expected IsConnected to return false after Close")
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if err := client.Connect(context.Background()); !errors.Is(err, ErrAlreadyClosed) {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestClient_ConnectFailure(t *testing.T) {
	client := NewClient(DefaultClientConfig("ws://127.0.0.1:1/v1/ws"), nil)
	if err := client.Connect(context.Background()); err == nil {
		t.Fatal("Connect to a closed port should fail")
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after failed Connect")
	}
}

func TestClient_ReceivesSnapshots(t *testing.T) {
	frame, want := snapshotFrame(t, "101")

	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"hello"}`))
		conn.WriteMessage(websocket.TextMessage, frame)
		drain(conn)
	})
	defer server.Close()

	client := NewClient(DefaultClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case u := <-client.Updates():
		if u.Snapshot.ID != want.ID {
			t.Errorf("snapshot ID = %s, want %s", u.Snapshot.ID, want.ID)
		}
		if u.Snapshot.Records[0].TrainNo != "101" {
			t.Errorf("TrainNo = %q, want 101", u.Snapshot.Records[0].TrainNo)
		}
		if u.ReceivedAt.IsZero() {
			t.Error("ReceivedAt should be set")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for update")
	}

	for i := 0; i < 2; i++ {
		select {
		case err := <-client.Errors():
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error %d = %v, want *DecodeError", i, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for decode error %d", i)
		}
	}
}

func TestClient_DoneOnServerClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"))
	})
	defer server.Close()

	client := NewClient(DefaultClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case <-client.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done() not closed after server close")
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after server close")
	}

	select {
	case err := <-client.Errors():
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Errorf("error = %v, want going-away close", err)
		}
	default:
		t.Error("expected the close to be reported")
	}
}

func TestClient_DeliverDropsOldest(t *testing.T) {
	c := NewClient(ClientConfig{URL: "ws://unused", BufferSize: 1}, nil).(*client)

	_, first := snapshotFrame(t, "1")
	_, second := snapshotFrame(t, "2")
	c.deliver(Update{Snapshot: first})
	c.deliver(Update{Snapshot: second})

	u := <-c.Updates()
	if u.Snapshot.ID != second.ID {
		t.Errorf("pending update = %s, want newest %s", u.Snapshot.ID, second.ID)
	}
	select {
	case <-c.Updates():
		t.Error("buffer should hold a single update")
	default:
	}
}

func TestWatcher_Reconnects(t *testing.T) {
	var conns atomic.Int32
	frame, _ := snapshotFrame(t, "101")
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conns.Add(1)
		conn.WriteMessage(websocket.TextMessage, frame)
		// Drop the connection after one frame.
	})
	defer server.Close()

	w := NewWatcher(WatcherConfig{
		Client:            DefaultClientConfig(wsURL(server)),
		ReconnectBaseWait: 10 * time.Millisecond,
		ReconnectMaxWait:  20 * time.Millisecond,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(Update) {
			if received.Add(1) == 3 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not receive three snapshots")
	}

	if w.Connects() < 3 {
		t.Errorf("Connects() = %d, want >= 3", w.Connects())
	}
	if conns.Load() < 3 {
		t.Errorf("server saw %d connections, want >= 3", conns.Load())
	}
}

func TestWatcher_StopsWhileRetrying(t *testing.T) {
	w := NewWatcher(WatcherConfig{
		Client:            DefaultClientConfig("ws://127.0.0.1:1/v1/ws"),
		ReconnectBaseWait: time.Hour,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := w.Run(ctx, func(Update) {}); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("Run() should return promptly after cancellation")
	}
	if w.Connects() != 0 {
		t.Errorf("Connects() = %d, want 0", w.Connects())
	}
}
