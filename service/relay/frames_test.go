package relay

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFrameJSON(t *testing.T) {
	f, err := ParseFrameJSON([]byte(`{"event":"sendMessage","data":{"content":"hi","roomId":"r1"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Event != EvtSendMessage {
		t.Fatalf("event = %q", f.Event)
	}
	m, err := f.DataMap()
	if err != nil {
		t.Fatalf("data map: %v", err)
	}
	if m["content"] != "hi" || m["roomId"] != "r1" {
		t.Fatalf("unexpected payload: %v", m)
	}
}

func TestParseFrameJSONBad(t *testing.T) {
	if _, err := ParseFrameJSON([]byte(`not json`)); err == nil {
		t.Fatalf("garbage must not parse")
	}
	if _, err := ParseFrameJSON([]byte(`{"data":{}}`)); err == nil {
		t.Fatalf("missing event must not parse")
	}
}

func TestFrameDataString(t *testing.T) {
	f, err := ParseFrameJSON([]byte(`{"event":"joinRoom","data":"r1"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	roomID, err := f.DataString()
	if err != nil || roomID != "r1" {
		t.Fatalf("room = %q err = %v", roomID, err)
	}
	// 对象负载不能当字符串取
	f2, _ := ParseFrameJSON([]byte(`{"event":"joinRoom","data":{"roomId":"r1"}}`))
	if _, err := f2.DataString(); err == nil {
		t.Fatalf("object payload as string must fail")
	}
}

func TestBuildFrameRoundTrip(t *testing.T) {
	raw, err := BuildFrame(EvtUserOnline, "u1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f, err := ParseFrameJSON(raw)
	if err != nil {
		t.Fatalf("parse built frame: %v", err)
	}
	if f.Event != EvtUserOnline {
		t.Fatalf("event = %q", f.Event)
	}
	u, err := f.DataString()
	if err != nil || u != "u1" {
		t.Fatalf("data = %q err = %v", u, err)
	}
}

func TestNormalizeContentTrim(t *testing.T) {
	if got := NormalizeContent("  hello  "); got != "hello" {
		t.Fatalf("trim: got %q", got)
	}
	if got := NormalizeContent("   "); got != "" {
		t.Fatalf("whitespace-only must normalize to empty, got %q", got)
	}
}

func TestNormalizeContentCap(t *testing.T) {
	long := strings.Repeat("a", 2000)
	got := NormalizeContent(long)
	if len([]rune(got)) != MaxContentLen {
		t.Fatalf("expected %d chars, got %d", MaxContentLen, len([]rune(got)))
	}
	// 多字节字符按字符截断，不能截出半个字
	wide := strings.Repeat("消", 1500)
	got = NormalizeContent(wide)
	if len([]rune(got)) != MaxContentLen {
		t.Fatalf("expected %d runes, got %d", MaxContentLen, len([]rune(got)))
	}
	if !json.Valid([]byte(`"` + got + `"`)) {
		t.Fatalf("truncated content must stay valid text")
	}
}
