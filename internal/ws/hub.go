package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"streams-service/internal/models"
	"streams-service/internal/observability"
)

// Hub maintains the active notification streams, keyed by user id.
type Hub struct {
	streams  map[int]map[*websocket.Conn]bool
	connInfo map[int]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		streams:  make(map[int]map[*websocket.Conn]bool),
		connInfo: make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection for a user.
func (h *Hub) AddClient(userID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.streams[userID]; !ok {
		h.streams[userID] = make(map[*websocket.Conn]bool)
	}
	h.streams[userID][conn] = true
	if _, ok := h.connInfo[userID]; !ok {
		h.connInfo[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[userID][conn] = info
}

// RemoveClient removes a user's websocket connection.
func (h *Hub) RemoveClient(userID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.streams[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.streams, userID)
		}
	}
	if infos, ok := h.connInfo[userID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, userID)
		}
	}
}

// BroadcastNotification pushes a notification to every open stream of
// the target user.
func (h *Hub) BroadcastNotification(userID int, n models.Notification) {
	h.mu.RLock()
	conns := h.streams[userID]
	h.mu.RUnlock()

	payload, _ := json.Marshal(n)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(userID, conn)
			observability.IncWSEvent("ws_error")
		}
	}
}
