package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/saheli56/Temple-Run/internal/logging"
)

// hubBuffer bounds how many unsent messages the hub queues before dropping.
const hubBuffer = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventHub broadcasts live pipeline messages (samples, action events, mode
// changes) to WebSocket clients. Publish never blocks: when the hub falls
// behind, messages are dropped rather than stalling the pipeline.
type EventHub struct {
	clients  map[*websocket.Conn]bool
	messages chan []byte
	mu       sync.RWMutex
}

// NewEventHub creates a hub and starts its broadcast loop.
func NewEventHub() *EventHub {
	h := &EventHub{
		clients:  make(map[*websocket.Conn]bool),
		messages: make(chan []byte, hubBuffer),
	}
	go h.broadcast()
	return h
}

// Publish queues a message for all connected clients.
func (h *EventHub) Publish(kind string, payload any) {
	msg, err := json.Marshal(map[string]any{
		"type": kind,
		"data": payload,
	})
	if err != nil {
		return
	}
	select {
	case h.messages <- msg:
	default:
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.S().Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast drains the message queue into every connected client.
func (h *EventHub) broadcast() {
	for msg := range h.messages {
		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}

// ClientCount reports how many WebSocket clients are connected.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
