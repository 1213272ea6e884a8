package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	errs "PPRelay/tools/errs"
	"PPRelay/tools/ids"
)

// ===== 配置 =====

type ManagerConf struct {
	SendQueueSize int              // 每连接发送队列长度
	Clock         func() time.Time // 可注入时钟（单测用）；nil => time.Now
}

func (c *ManagerConf) norm() {
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 256
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// ConnManager owns every live connection on this node. Connections are
// indexed by conn ID (primary) and by user ID once announced. Nothing
// outside this struct holds a connection past the duration of an event.
type ConnManager struct {
	mu     sync.RWMutex
	bySnow map[string]*Client            // connID -> client
	byUser map[string]map[string]*Client // userID -> (connID -> client)

	conf ManagerConf
}

func NewConnManager(conf ManagerConf) *ConnManager {
	conf.norm()
	return &ConnManager{
		bySnow: make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
		conf:   conf,
	}
}

// Add registers a fresh anonymous connection and assigns its conn ID.
// ws 允许为 nil（进程内测试客户端）。
func (m *ConnManager) Add(ws *websocket.Conn) *Client {
	c := NewClient(ids.GenerateString(), ws, m.conf.SendQueueSize)
	m.mu.Lock()
	m.bySnow[c.ConnID] = c
	m.mu.Unlock()
	return c
}

func (m *ConnManager) Get(connID string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.bySnow[connID]
	return c, ok
}

// BindUser attaches an announced user ID to the connection. A connection
// re-announcing as a different user moves between user indexes.
func (m *ConnManager) BindUser(connID, userID string) error {
	if connID == "" || userID == "" {
		return errs.ErrBadPayload.WithDetail("connID/userID empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.bySnow[connID]
	if !ok {
		return errs.ErrConnNotFound.WithDetail(connID)
	}

	// 换绑：从旧 user 索引摘掉
	if c.UserID != "" && c.UserID != userID {
		if mm := m.byUser[c.UserID]; mm != nil {
			delete(mm, connID)
			if len(mm) == 0 {
				delete(m.byUser, c.UserID)
			}
		}
	}

	c.UserID = userID
	if m.byUser[userID] == nil {
		m.byUser[userID] = make(map[string]*Client)
	}
	m.byUser[userID][connID] = c
	return nil
}

// UserOf 读取连接上绑定的 user（未 announce 返回 false）
func (m *ConnManager) UserOf(connID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.bySnow[connID]
	if !ok || c.UserID == "" {
		return "", false
	}
	return c.UserID, true
}

// Remove unregisters the connection from all indexes and returns it;
// the caller finishes cleanup (presence, rooms, rate limits).
func (m *ConnManager) Remove(connID string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.bySnow[connID]
	if !ok {
		return nil
	}
	delete(m.bySnow, connID)
	if c.UserID != "" {
		if mm := m.byUser[c.UserID]; mm != nil {
			delete(mm, connID)
			if len(mm) == 0 {
				delete(m.byUser, c.UserID)
			}
		}
	}
	return c
}

// ListByUser 某用户的全部连接
func (m *ConnManager) ListByUser(userID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mm := m.byUser[userID]
	if len(mm) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(mm))
	for _, c := range mm {
		out = append(out, c)
	}
	return out
}

// ListAll 全量快照（全局广播用）
func (m *ConnManager) ListAll() []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Client, 0, len(m.bySnow))
	for _, c := range m.bySnow {
		out = append(out, c)
	}
	return out
}

func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bySnow)
}

// Close 关闭所有连接（进程退出时）
func (m *ConnManager) Close() {
	m.mu.Lock()
	conns := make([]*Client, 0, len(m.bySnow))
	for _, c := range m.bySnow {
		conns = append(conns, c)
	}
	m.bySnow = make(map[string]*Client)
	m.byUser = make(map[string]map[string]*Client)
	m.mu.Unlock()

	for _, c := range conns {
		c.CloseSend()
		closeQuiet(c.WS)
	}
}

func closeQuiet(ws *websocket.Conn) {
	if ws != nil {
		_ = ws.Close()
	}
}
