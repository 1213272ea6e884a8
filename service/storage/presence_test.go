package storage

import (
	"errors"
	"testing"
	"time"

	errs "PPRelay/tools/errs"
)

func TestPresenceKeyShape(t *testing.T) {
	if got := presenceKey("u1"); got != "im:presence:u1" {
		t.Fatalf("key = %q", got)
	}
}

func TestPresenceRequiresInit(t *testing.T) {
	// 未 InitRedis 时所有操作返回 ErrNotReady，不 panic
	if err := PresenceOnline("u1", "node-1", time.Minute); !errors.Is(err, errs.ErrNotReady) {
		t.Fatalf("online: %v", err)
	}
	if err := PresenceOffline("u1"); !errors.Is(err, errs.ErrNotReady) {
		t.Fatalf("offline: %v", err)
	}
	if _, _, err := PresenceLookup("u1"); !errors.Is(err, errs.ErrNotReady) {
		t.Fatalf("lookup: %v", err)
	}

	var m Mirror
	if err := m.Online("u1", "node-1", time.Minute); !errors.Is(err, errs.ErrNotReady) {
		t.Fatalf("mirror online: %v", err)
	}
}
