package relay

import (
	"sync"
	"time"
)

// ===== 配置 =====

type RateLimiterConf struct {
	Limit  int              // 每窗口上限（默认 30）
	Window time.Duration    // 固定窗口长度（默认 60s）
	Clock  func() time.Time // 可注入时钟（单测用）；nil => time.Now
}

func (c *RateLimiterConf) norm() {
	if c.Limit <= 0 {
		c.Limit = 30
	}
	if c.Window <= 0 {
		c.Window = 60 * time.Second
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

type limitKey struct {
	conn  string
	event string
}

// 固定窗口计数器：过期即清零重开，不做滑动。窗口边界上的突发
// 可能瞬时超过名义速率，对聊天限流来说可以接受。
type counter struct {
	count int
	reset time.Time
}

// RateLimiter bounds event frequency per (connection, event type).
// Counters are created lazily on first use and purged on disconnect.
type RateLimiter struct {
	mu       sync.Mutex
	counters map[limitKey]*counter
	conf     RateLimiterConf
}

func NewRateLimiter(conf RateLimiterConf) *RateLimiter {
	conf.norm()
	return &RateLimiter{
		counters: make(map[limitKey]*counter),
		conf:     conf,
	}
}

// Allow reports whether this event is within the window budget.
// Deny means the caller silently drops the inbound event.
func (rl *RateLimiter) Allow(connID, event string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.conf.Clock()
	k := limitKey{conn: connID, event: event}

	c, ok := rl.counters[k]
	if !ok {
		c = &counter{reset: now.Add(rl.conf.Window)}
		rl.counters[k] = c
	}
	if now.After(c.reset) {
		c.count = 0
		c.reset = now.Add(rl.conf.Window)
	}
	c.count++
	return c.count <= rl.conf.Limit
}

// DropConn 连接断开时清掉该连接的全部计数器
func (rl *RateLimiter) DropConn(connID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k := range rl.counters {
		if k.conn == connID {
			delete(rl.counters, k)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.counters)
}
