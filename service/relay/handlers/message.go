package handlers

import (
	"time"

	"PPRelay/logger"
	"PPRelay/service/relay"
	"PPRelay/tools/decode"
)

// SendMessageHandler relays chat messages to the target room. The relay
// itself is fire-and-forget: content is normalized, broadcast to current
// members, and durably persisted/notified off the relay path. A receiver
// that is not currently joined simply misses the broadcast; history comes
// from the store, not from here.
type SendMessageHandler struct{}

func NewSendMessageHandler() relay.Handler { return &SendMessageHandler{} }
func (h *SendMessageHandler) Event() string { return relay.EvtSendMessage }
func (h *SendMessageHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	if !ctx.S.Limiter().Allow(c.ConnID, relay.RateEventMsg) {
		return nil
	}

	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.SendMessagePayload](m)
	if err != nil || p.RoomID == "" {
		return nil
	}
	content := relay.NormalizeContent(p.Content)
	if content == "" {
		return nil
	}

	// 透传原始负载，只覆盖规整后的 content
	m["content"] = content
	ctx.S.BroadcastRoom(p.RoomID, relay.EvtNewMessage, m, nil)

	senderID, _ := ctx.S.ConnMgr().UserOf(c.ConnID)
	now := time.Now()
	ctx.S.SaveMessageAsync(&relay.StoredMessage{
		RoomID:   p.RoomID,
		SenderID: senderID,
		Content:  content,
		SentAt:   now,
	})
	ctx.S.NotifyAsync(&relay.Notification{
		RoomID:   p.RoomID,
		FromUser: senderID,
		Preview:  preview(content),
		Ts:       now.UnixMilli(),
	})
	return nil
}

func preview(content string) string {
	r := []rune(content)
	if len(r) > 100 {
		r = r[:100]
	}
	return string(r)
}

// messageEdited：服务端补 editedAt 时间戳后转发到房间

type MessageEditedHandler struct{}

func NewMessageEditedHandler() relay.Handler { return &MessageEditedHandler{} }
func (h *MessageEditedHandler) Event() string { return relay.EvtMessageEdited }
func (h *MessageEditedHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.EditPayload](m)
	if err != nil || p.MessageID == "" || p.RoomID == "" {
		return nil
	}
	ctx.S.BroadcastRoom(p.RoomID, relay.EvtMessageEdited, map[string]any{
		"messageId": p.MessageID,
		"content":   p.Content,
		"roomId":    p.RoomID,
		"editedAt":  time.Now().UnixMilli(),
	}, nil)
	return nil
}

type MessageDeletedHandler struct{}

func NewMessageDeletedHandler() relay.Handler { return &MessageDeletedHandler{} }
func (h *MessageDeletedHandler) Event() string { return relay.EvtMessageDeleted }
func (h *MessageDeletedHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.DeletePayload](m)
	if err != nil || p.MessageID == "" || p.RoomID == "" {
		return nil
	}
	ctx.S.BroadcastRoom(p.RoomID, relay.EvtMessageDeleted, map[string]any{
		"messageId":         p.MessageID,
		"roomId":            p.RoomID,
		"deleteForEveryone": p.DeleteForEveryone,
	}, nil)
	return nil
}

type MessageReactionHandler struct{}

func NewMessageReactionHandler() relay.Handler { return &MessageReactionHandler{} }
func (h *MessageReactionHandler) Event() string { return relay.EvtMessageReaction }
func (h *MessageReactionHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.ReactionPayload](m)
	if err != nil || p.MessageID == "" || p.RoomID == "" {
		return nil
	}
	ctx.S.BroadcastRoom(p.RoomID, relay.EvtMessageReaction, map[string]any{
		"messageId": p.MessageID,
		"roomId":    p.RoomID,
		"reactions": p.Reactions,
	}, nil)
	return nil
}

// messageRead：已读回执，广播到房间内所有成员

type MessageReadHandler struct{}

func NewMessageReadHandler() relay.Handler { return &MessageReadHandler{} }
func (h *MessageReadHandler) Event() string { return relay.EvtMessageRead }
func (h *MessageReadHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	m, err := f.DataMap()
	if err != nil {
		return nil
	}
	p, err := decode.DecodeMap[relay.ReadPayload](m)
	if err != nil || p.MessageID == "" || p.RoomID == "" {
		return nil
	}
	userID := p.UserID
	if userID == "" {
		userID, _ = ctx.S.ConnMgr().UserOf(c.ConnID)
	}
	if userID == "" {
		logger.Debugf("[Read] no user for conn=%s, drop", c.ConnID)
		return nil
	}
	ctx.S.BroadcastRoom(p.RoomID, relay.EvtMessageRead, map[string]any{
		"messageId": p.MessageID,
		"roomId":    p.RoomID,
		"userId":    userID,
	}, nil)
	return nil
}
