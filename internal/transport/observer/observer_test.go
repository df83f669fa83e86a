package observer

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHub_BroadcastReachesViewer(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Registration happens in the handler goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for hub.NumViewers() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("viewer never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast([]byte(`{"tick":3}`))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != `{"tick":3}` {
		t.Fatalf("got %q", msg)
	}
}

func TestHub_BroadcastWithoutViewers(t *testing.T) {
	hub := NewHub(nil)
	// Must not block or panic.
	hub.Broadcast([]byte("frame"))
	if hub.NumViewers() != 0 {
		t.Fatalf("viewers = %d", hub.NumViewers())
	}
}
