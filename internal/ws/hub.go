// Package ws streams bus events to connected UI clients over a WebSocket,
// so the restart progress bar updates without hammering the status endpoint.
// Polling remains the source of truth; this is a push convenience.
package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"guardian/internal/events"
)

const writeTimeout = 10 * time.Second

// Hub manages active UI WebSocket connections.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates a hub and subscribes it to every event on the bus.
func NewHub(bus *events.Bus) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
	bus.Subscribe(h.broadcast)
	return h
}

// Handle upgrades the request and keeps the connection until the client
// goes away. Clients only listen; inbound messages are discarded.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast sends the event to every connected client, dropping the ones
// that fail to accept the write. Writes happen under the hub lock: gorilla
// connections allow only one concurrent writer.
func (h *Hub) broadcast(e events.Event) {
	h.mu.Lock()
	var dead []*websocket.Conn
	for c := range h.conns {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteJSON(e); err != nil {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		delete(h.conns, c)
		c.Close()
	}
	h.mu.Unlock()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if present {
		conn.Close()
	}
}
