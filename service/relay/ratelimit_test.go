package relay

import (
	"testing"
	"time"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(RateLimiterConf{Clock: func() time.Time { return now }})

	for i := 0; i < 30; i++ {
		if !rl.Allow("c1", RateEventMsg) {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if rl.Allow("c1", RateEventMsg) {
		t.Fatalf("31st call within window should be denied")
	}
	if rl.Allow("c1", RateEventMsg) {
		t.Fatalf("32nd call within window should be denied")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(RateLimiterConf{Clock: func() time.Time { return now }})

	for i := 0; i < 31; i++ {
		rl.Allow("c1", RateEventMsg)
	}
	if rl.Allow("c1", RateEventMsg) {
		t.Fatalf("should still be denied before window expiry")
	}

	// 过窗口后重新计数
	now = now.Add(61 * time.Second)
	for i := 0; i < 30; i++ {
		if !rl.Allow("c1", RateEventMsg) {
			t.Fatalf("call %d after reset should be allowed", i+1)
		}
	}
	if rl.Allow("c1", RateEventMsg) {
		t.Fatalf("31st call after reset should be denied")
	}
}

func TestRateLimiterIndependentKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(RateLimiterConf{Clock: func() time.Time { return now }})

	for i := 0; i < 30; i++ {
		rl.Allow("c1", RateEventMsg)
	}
	if rl.Allow("c1", RateEventMsg) {
		t.Fatalf("c1/msg should be exhausted")
	}
	// 同连接不同事件、不同连接同事件都不受影响
	if !rl.Allow("c1", RateEventJoin) {
		t.Fatalf("c1/join should have its own window")
	}
	if !rl.Allow("c2", RateEventMsg) {
		t.Fatalf("c2/msg should have its own window")
	}
}

func TestRateLimiterDropConn(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConf{})

	rl.Allow("c1", RateEventMsg)
	rl.Allow("c1", RateEventJoin)
	rl.Allow("c2", RateEventMsg)
	if got := rl.size(); got != 3 {
		t.Fatalf("expected 3 counters, got %d", got)
	}

	rl.DropConn("c1")
	if got := rl.size(); got != 1 {
		t.Fatalf("expected 1 counter after drop, got %d", got)
	}
	// c1 重新从零开始
	for i := 0; i < 30; i++ {
		if !rl.Allow("c1", RateEventMsg) {
			t.Fatalf("call %d after DropConn should be allowed", i+1)
		}
	}
}

func TestRateLimiterCustomLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConf{Limit: 2, Window: time.Hour})
	if !rl.Allow("c1", RateEventMsg) || !rl.Allow("c1", RateEventMsg) {
		t.Fatalf("first two calls should pass")
	}
	if rl.Allow("c1", RateEventMsg) {
		t.Fatalf("third call should be denied with limit=2")
	}
}
