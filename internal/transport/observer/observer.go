// Package observer serves read-only live views: render frames are
// broadcast to every connected websocket client. Clients never submit
// anything; the sim stays a single-process loop.
package observer

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Hub struct {
	log *log.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]chan []byte
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		conns: map[*websocket.Conn]chan []byte{},
	}
}

// Handler upgrades viewers and streams broadcast frames until they
// disconnect.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		out := make(chan []byte, 64)

		h.mu.Lock()
		h.conns[conn] = out
		h.mu.Unlock()

		// Writer goroutine: frames only flow outward.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for b := range out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		// Reader loop only detects disconnects; inbound data is dropped.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		// Deregister before closing out so Broadcast never hits a
		// closed channel.
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
		close(out)
		<-done
		_ = conn.Close()
	}
}

// Broadcast fans a frame out to every viewer. Slow viewers drop frames
// instead of stalling the tick loop.
func (h *Hub) Broadcast(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, out := range h.conns {
		select {
		case out <- b:
		default:
		}
	}
}

// NumViewers reports the connected client count.
func (h *Hub) NumViewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
