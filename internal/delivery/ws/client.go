package ws

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mmuslimabdulj/navsocket/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second // Relaxed to 60s for mobile stability

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10
)

// EventHandler receives the events of a connection
type EventHandler interface {
	HandleMessage(ctx context.Context, c *Client, raw []byte)
	HandleDisconnect(ctx context.Context, c *Client)
}

// Client represents a single websocket connection
type Client struct {
	ID      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
}

// NewClient creates a new Client with a fresh connection id.
// A nil limiter disables inbound event rate limiting.
func NewClient(conn *websocket.Conn, limiter *rate.Limiter) *Client {
	return &Client{
		ID:      uuid.New().String(),
		conn:    conn,
		send:    make(chan []byte, domain.SendBufferSize),
		limiter: limiter,
	}
}

// ReadPump pumps frames from the websocket connection to the handler.
// Frames are handled one at a time, so a connection's events keep their order.
func (c *Client) ReadPump(ctx context.Context, handler EventHandler, maxMessageSize int64) {
	defer func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), domain.DisconnectSaveTimeout)
		handler.HandleDisconnect(dctx, c)
		cancel()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		handler.HandleMessage(ctx, c, message)
	}
}

// WritePump pumps messages from the send queue to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send adds a message to the client's send queue.
// It reports false when the queue is full or already closed.
func (c *Client) Send(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		// Buffer full
		return false
	}
}

// allow applies the inbound event rate limit
func (c *Client) allow() bool {
	if c.limiter == nil {
		return true
	}
	return c.limiter.Allow()
}

// close shuts the send queue once; WritePump then sends a close frame
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
