package notify

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub is the registry of connected staff event feeds. The feed is strictly
// one-way: the server pushes events, clients never send. Each user holds at
// most one feed; a reconnect replaces the previous connection.
type Hub struct {
	mu    sync.RWMutex
	feeds map[int64]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{feeds: make(map[int64]*websocket.Conn)}
}

func (h *Hub) Subscribe(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.feeds[userID]; ok && old != nil {
		_ = old.Close()
	}
	h.feeds[userID] = conn
}

func (h *Hub) Drop(userID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.feeds[userID]; ok {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.feeds, userID)
	}
}

// Push delivers one event to the user's feed, if connected. A failed write
// means the client is gone; the feed is dropped so later pushes stop trying.
func (h *Hub) Push(userID int64, event any) bool {
	h.mu.RLock()
	conn, ok := h.feeds[userID]
	h.mu.RUnlock()

	if !ok || conn == nil {
		return false
	}
	if err := conn.WriteJSON(event); err != nil {
		h.Drop(userID)
		return false
	}
	return true
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, conn := range h.feeds {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.feeds, userID)
	}
}
