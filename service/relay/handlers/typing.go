package handlers

import (
	"PPRelay/service/relay"
	"PPRelay/tools/decode"
)

// typing：房间范围、不回发给发送者；未 announce 的连接直接忽略。

type TypingHandler struct{}

func NewTypingHandler() relay.Handler { return &TypingHandler{} }
func (h *TypingHandler) Event() string { return relay.EvtTyping }
func (h *TypingHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	userID, ok := ctx.S.Presence().UserOf(c.ConnID)
	if !ok {
		return nil
	}

	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.TypingPayload](m)
	if err != nil || p.RoomID == "" {
		return nil
	}

	ctx.S.BroadcastRoom(p.RoomID, relay.EvtUserTyping, map[string]any{
		"userId":   userID,
		"roomId":   p.RoomID,
		"isTyping": p.IsTyping,
	}, c)
	return nil
}
