package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/playmatatu/snooker/internal/game"
)

// Hub tracks websocket viewers per practice session.
type Hub struct {
	rooms      map[string]map[*Client]struct{} // sessionID -> viewers
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.sessionID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.sessionID] = room
			}
			room[client] = struct{}{}
			size := len(room)
			h.mu.Unlock()
			log.Printf("[WS] Viewer %s joined session %s (room_size=%d)", client.id, client.sessionID, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.sessionID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.sessionID)
					}
					log.Printf("[WS] Viewer %s left session %s", client.id, client.sessionID)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for c := range room {
			close(c.send)
		}
		delete(h.rooms, id)
	}
}

// RoomSize returns how many viewers a session has.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastToSession sends a message to every viewer of a session. Slow
// viewers drop messages rather than stall the sender.
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}
	h.broadcastRaw(sessionID, data)
}

func (h *Hub) broadcastRaw(sessionID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[sessionID] {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for viewer %s in session %s, dropping message", client.id, sessionID)
		}
	}
}

// PublishSnapshot implements game.EventSink.
func (h *Hub) PublishSnapshot(sessionID string, snap game.Snapshot) {
	if h.RoomSize(sessionID) == 0 {
		return
	}
	h.BroadcastToSession(sessionID, Message{Type: "snapshot", Data: snap})
}

// PublishEvent implements game.EventSink.
func (h *Hub) PublishEvent(sessionID string, ev game.Event) {
	h.BroadcastToSession(sessionID, Message{Type: "event", Data: ev})
}
