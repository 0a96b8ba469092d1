package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one websocket connection and the subscriptions it runs.
type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	ops     map[string]context.CancelFunc
	opsMu   sync.Mutex
	writeMu sync.Mutex
}

func NewClient(conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		ops:    make(map[string]context.CancelFunc),
	}
}

// StartOperation registers a running operation. It reports false when id is
// already in use.
func (c *Client) StartOperation(id string, cancel context.CancelFunc) bool {
	c.opsMu.Lock()
	defer c.opsMu.Unlock()
	if _, exists := c.ops[id]; exists {
		return false
	}
	c.ops[id] = cancel
	return true
}

func (c *Client) StopOperation(id string) {
	c.opsMu.Lock()
	cancel, ok := c.ops[id]
	delete(c.ops, id)
	c.opsMu.Unlock()
	if ok {
		cancel()
	}
}

func (c *Client) StopAll() {
	c.opsMu.Lock()
	ops := c.ops
	c.ops = make(map[string]context.CancelFunc)
	c.opsMu.Unlock()
	for _, cancel := range ops {
		cancel()
	}
}

func (c *Client) OperationCount() int {
	c.opsMu.Lock()
	defer c.opsMu.Unlock()
	return len(c.ops)
}

// WriteLoop handles outbound messages from the Send channel
func (c *Client) WriteLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg := <-c.Send:
			c.writeMu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
			c.writeMu.Unlock()
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.Conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			c.writeMu.Unlock()
		}
	}
}

func (c *Client) close() {
	c.writeMu.Lock()
	_ = c.Conn.Close()
	c.writeMu.Unlock()
}

// SendMessage queues msg without blocking; a full queue drops it.
func (c *Client) SendMessage(msg []byte) {
	select {
	case c.Send <- msg:
	default:
	}
}

func (c *Client) SendOperation(msg OperationMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.SendMessage(data)
}
