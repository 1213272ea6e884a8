package relay

import (
	"sync"
)

// PresenceManager derives online/offline status from announced connections.
// It is a best-effort liveness signal for the UI, not an authoritative
// value: the same user announcing from a second connection simply
// overwrites the user index (last announcement wins), and absence of an
// entry means offline.
type PresenceManager struct {
	mu     sync.RWMutex
	byConn map[string]string // connID -> userID
	byUser map[string]string // userID -> connID（最后一次 announce 的连接）
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		byConn: make(map[string]string),
		byUser: make(map[string]string),
	}
}

// Announce binds userID to the connection. Re-announcing from the same or
// another connection overwrites; no dedup across connections.
func (p *PresenceManager) Announce(connID, userID string) {
	if connID == "" || userID == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byConn[connID] = userID
	p.byUser[userID] = connID
}

func (p *PresenceManager) UserOf(connID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.byConn[connID]
	return u, ok
}

func (p *PresenceManager) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byUser[userID]
	return ok
}

// Drop removes the connection's presence entry and returns the announced
// user, if any. The user index is only cleared when it still points at
// this connection, so a newer announcement from another device survives.
func (p *PresenceManager) Drop(connID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.byConn[connID]
	if !ok {
		return "", false
	}
	delete(p.byConn, connID)
	if p.byUser[u] == connID {
		delete(p.byUser, u)
	}
	return u, true
}

// OnlineUsers snapshot（调试/统计用）
func (p *PresenceManager) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.byUser))
	for u := range p.byUser {
		out = append(out, u)
	}
	return out
}
