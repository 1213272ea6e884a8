package relay

import (
	"sync"
)

// RoomManager tracks which connections belong to which broadcast room.
// Rooms are created implicitly on first join and removed when the last
// member leaves; nothing here is persisted.
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client // roomID -> connID -> client
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[string]map[string]*Client)}
}

func (r *RoomManager) Join(c *Client, roomID string) {
	if c == nil || roomID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.rooms[roomID]
	if m == nil {
		m = make(map[string]*Client)
		r.rooms[roomID] = m
	}
	m[c.ConnID] = c
}

// Leave 非成员调用是 no-op
func (r *RoomManager) Leave(c *Client, roomID string) {
	if c == nil || roomID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.rooms[roomID]; m != nil {
		delete(m, c.ConnID)
		if len(m) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// Members snapshot；房间不存在返回 nil
func (r *RoomManager) Members(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.rooms[roomID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}

// MembersExcept 房间成员去掉 except（typing 等不回发给发送者）
func (r *RoomManager) MembersExcept(roomID string, except *Client) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.rooms[roomID]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for id, c := range m {
		if except != nil && id == except.ConnID {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *RoomManager) IsMember(roomID, connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.rooms[roomID]
	if m == nil {
		return false
	}
	_, ok := m[connID]
	return ok
}

// DropConn 断开时从所有房间移除
func (r *RoomManager) DropConn(c *Client) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for roomID, m := range r.rooms {
		delete(m, c.ConnID)
		if len(m) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

func (r *RoomManager) roomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
