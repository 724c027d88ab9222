package apiserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub broadcasts published frame views to every connected WebSocket
// client at a fixed tick rate. It never reads from the simulation
// directly — only from a Publisher — so it can run on its own
// goroutine indefinitely without holding up Step.
type Hub struct {
	publisher *Publisher
	interval  time.Duration

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub returns a Hub that polls publisher every interval and pushes
// any new frame to all connected clients.
func NewHub(publisher *Publisher, interval time.Duration) *Hub {
	return &Hub{
		publisher: publisher,
		interval:  interval,
		clients:   make(map[*websocket.Conn]struct{}),
	}
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run broadcasts the latest published frame every tick until stop is
// closed. Intended to run in its own goroutine.
func (h *Hub) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastFrame int64 = -1
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fv, ok := h.publisher.Latest()
			if !ok || fv.Frame == lastFrame || h.ClientCount() == 0 {
				continue
			}
			lastFrame = fv.Frame
			h.broadcast(fv)
		}
	}
}

func (h *Hub) broadcast(fv FrameView) {
	payload, err := json.Marshal(fv)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ServeWS upgrades the connection and registers it with the hub. The
// connection is read-only from the client's side: any inbound message
// is discarded, since this stream never accepts commands (actions are
// dispatched through the embedder, not this package).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	if fv, ok := h.publisher.Latest(); ok {
		if payload, err := json.Marshal(fv); err == nil {
			conn.WriteMessage(websocket.TextMessage, payload)
		}
	}

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
