package bridge

import (
	"context"
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	frame := []byte(`{"event":"newMessage","data":{"content":"hi"}}`)
	raw, err := EncodeEnvelope("node-1", "r1", frame)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Node != "node-1" || env.Room != "r1" {
		t.Fatalf("envelope = %+v", env)
	}
	if string(env.Frame) != string(frame) {
		t.Fatalf("frame must survive untouched, got %s", env.Frame)
	}
}

func TestEnvelopeGlobalHasNoRoom(t *testing.T) {
	raw, err := EncodeEnvelope("node-1", "", []byte(`{}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Room != "" {
		t.Fatalf("global envelope must carry no room, got %q", env.Room)
	}
}

func TestDecodeEnvelopeRejectsBadInput(t *testing.T) {
	if _, err := DecodeEnvelope([]byte(`not json`)); err == nil {
		t.Fatalf("garbage must not decode")
	}
	// node 缺失时无法做回环判断，必须拒绝
	if _, err := DecodeEnvelope([]byte(`{"room":"r1","frame":{}}`)); err == nil {
		t.Fatalf("missing node must be rejected")
	}
}

func TestBridgeChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) BridgeMiddleware {
		return func(next BridgeHandler) BridgeHandler {
			return func(ctx context.Context, msg BridgeMessage) error {
				order = append(order, name)
				return next(ctx, msg)
			}
		}
	}

	h := BridgeChain(func(ctx context.Context, msg BridgeMessage) error {
		order = append(order, "handler")
		return nil
	}, mw("outer"), mw("inner"))

	if err := h(context.Background(), BridgeMessage{Subject: SubjectRoom}); err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Fatalf("middleware order = %v", order)
	}
}
