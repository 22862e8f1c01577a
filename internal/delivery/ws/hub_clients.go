package ws

// Register adds a connection to the hub
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
}

// Unregister removes a connection from the hub and its group and closes its
// send queue. It returns the userId the connection was registered under.
func (h *Hub) Unregister(c *Client) (userID string, registered bool) {
	h.mu.Lock()
	// Prevent double unregister
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return "", false
	}
	delete(h.clients, c.ID)

	userID, registered = h.users[c.ID]
	if registered {
		h.leaveLocked(c.ID, RoomName(userID))
		delete(h.users, c.ID)
	}
	h.mu.Unlock()

	c.close()
	h.metrics.ConnectionClosed()
	return userID, registered
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetClient returns a connected client by id
func (h *Hub) GetClient(id string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[id]
}
