package decode

import (
	"testing"
)

type msgPayload struct {
	Content string `json:"content"`
	RoomID  string `json:"roomId"`
	Limit   int    `json:"limit"`
	Typing  bool   `json:"isTyping"`
}

func TestDecodeMap(t *testing.T) {
	m := map[string]any{
		"content":  "hi",
		"roomId":   "r1",
		"limit":    float64(30), // JSON 数字默认是 float64
		"isTyping": true,
	}
	p, err := DecodeMap[msgPayload](m)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Content != "hi" || p.RoomID != "r1" || p.Limit != 30 || !p.Typing {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestDecodeMapWeaklyTyped(t *testing.T) {
	m := map[string]any{"limit": "42"}
	p, err := DecodeMap[msgPayload](m)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Limit != 42 {
		t.Fatalf("weak decode should coerce string to int, got %d", p.Limit)
	}

	// 关闭宽松解码后同样的输入应报错
	if _, err := DecodeMap[msgPayload](m, Options{WeaklyTypedInput: false}); err == nil {
		t.Fatalf("strict decode must reject string-to-int")
	}
}

func TestDecodeMapNil(t *testing.T) {
	if _, err := DecodeMap[msgPayload](nil); err == nil {
		t.Fatalf("nil map must fail")
	}
}

func TestDecodeMapIgnoresUnknownKeys(t *testing.T) {
	m := map[string]any{"content": "hi", "replyTo": "m42"}
	p, err := DecodeMap[msgPayload](m)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Content != "hi" {
		t.Fatalf("known keys must still decode, got %+v", p)
	}
}
