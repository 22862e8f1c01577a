package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mmuslimabdulj/navsocket/internal/domain"
)

// buildMessage wraps a payload in an outbound envelope as JSON bytes
func buildMessage(eventType domain.MessageType, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	msg := domain.Message{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}
	return json.Marshal(msg)
}

// EmitToRoom sends a frame to every connection of a group and returns how many
// connections accepted it. Connections with a full buffer miss the frame.
func (h *Hub) EmitToRoom(room string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.rooms[room] {
		if c.Send(data) {
			delivered++
		}
	}
	return delivered
}
