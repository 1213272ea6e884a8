package relay

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents one live realtime session on this gateway node.
// A single user may have multiple connections, each tracked separately;
// room membership and rate-limit state are keyed by ConnID, not UserID.

type Client struct {
	ConnID string          // unique connection ID (snowflake, unique within the node)
	UserID string          // set after the client announces online; guarded by ConnManager
	WS     *websocket.Conn // nil for in-process test clients
	Send   chan []byte     // outbound queue, drained by a single writer goroutine

	mu     sync.Mutex
	closed bool
}

// NewClient creates a new client connection object.
func NewClient(connID string, ws *websocket.Conn, sendQueueSize int) *Client {
	return &Client{
		ConnID: connID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
	}
}

// Enqueue 非阻塞投递；队列满或连接已关闭直接丢弃（best-effort）。
// fanout worker 可能在断开清理之后才处理到本连接，所以这里必须和
// CloseSend 互斥，不能裸写已关闭的 channel。
func (c *Client) Enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// CloseSend closes the outbound queue exactly once. The writer goroutine
// drains the remainder and closes the underlying websocket.
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}
