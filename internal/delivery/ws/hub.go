package ws

import (
	"sync"

	"github.com/mmuslimabdulj/navsocket/internal/observability"
)

// Hub is the connection registry. It owns broadcast group membership and the
// explicit connection -> userId table; both are updated together under mu.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client            // connection id -> client
	rooms   map[string]map[string]*Client // room -> connection id -> client
	users   map[string]string             // connection id -> userId
	metrics *observability.Metrics
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		users:   make(map[string]string),
	}
}

// SetMetrics attaches Prometheus metrics
func (h *Hub) SetMetrics(m *observability.Metrics) {
	h.metrics = m
}

// Join adds the client to the group of userID. A connection belongs to at most
// one user group: if it was registered under another user it leaves that group.
// previous is the userId the connection had before, if any.
func (h *Hub) Join(c *Client, userID string) (room, previous string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room = RoomName(userID)
	previous = h.users[c.ID]
	if previous != "" && previous != userID {
		h.leaveLocked(c.ID, RoomName(previous))
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.ID] = c
	h.users[c.ID] = userID
	return room, previous
}

// UserOf resolves the userId a connection registered with
func (h *Hub) UserOf(connID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	userID, ok := h.users[connID]
	return userID, ok
}

// RoomSize returns the number of connections in a group
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// UserCount returns the number of users with at least one open connection
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// OnlineUsers returns the open connection count of every connected user
func (h *Hub) OnlineUsers() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]int, len(h.rooms))
	for room, members := range h.rooms {
		if userID, ok := UserIDFromRoom(room); ok {
			out[userID] = len(members)
		}
	}
	return out
}

// leaveLocked removes a connection from a group, dropping empty groups.
// Caller must hold mu.
func (h *Hub) leaveLocked(connID, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}
