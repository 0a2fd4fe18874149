package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sweeney/button-sensor/internal/logic"
	"github.com/sweeney/button-sensor/internal/mqtt"
)

const writeWait = 2 * time.Second

// Hub streams classified events to websocket clients. Frames carry the same
// JSON payload that is published to the MQTT events topic.
type Hub struct {
	name     string
	log      *logrus.Entry
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates a hub for the named button.
func NewHub(name string, log *logrus.Entry) *Hub {
	return &Hub{
		name:    name,
		log:     log,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The status page is served from the same daemon, often by IP.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. Messages sent by clients are discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.add(conn)
	defer h.remove(conn)
	h.log.WithField("remote", r.RemoteAddr).Debug("websocket client connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.WithField("remote", r.RemoteAddr).Debugf("websocket client disconnected: %v", err)
			return
		}
	}
}

// Broadcast sends ev to every connected client. Clients that cannot keep up
// are dropped.
func (h *Hub) Broadcast(ev logic.Event) {
	payload, err := mqtt.FormatPayload(h.name, ev)
	if err != nil {
		h.log.WithError(err).Error("format websocket payload")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.WithError(err).Warn("dropping websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
			time.Now().Add(writeWait))
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
