package ids

import (
	"testing"
)

func TestGenerateUnique(t *testing.T) {
	seen := make(map[int64]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := Generate()
		if id <= 0 {
			t.Fatalf("id must be positive, got %d", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
}

func TestGenerateMonotonic(t *testing.T) {
	prev := Generate()
	for i := 0; i < 1000; i++ {
		id := Generate()
		if id <= prev {
			t.Fatalf("ids must be strictly increasing: %d then %d", prev, id)
		}
		prev = id
	}
}

func TestGenerateString(t *testing.T) {
	s := GenerateString()
	if s == "" || s == GenerateString() {
		t.Fatalf("string ids must be unique and non-empty")
	}
}

func TestSetNodeID(t *testing.T) {
	SetNodeID(7)
	id := Generate()
	if node := (id >> 12) & 0x3FF; node != 7 {
		t.Fatalf("node bits = %d, want 7", node)
	}

	// 越界回退到默认节点 1
	SetNodeID(1024)
	id = Generate()
	if node := (id >> 12) & 0x3FF; node != 1 {
		t.Fatalf("out-of-range node id must fall back to 1, got %d", node)
	}
	SetNodeID(1)
}
