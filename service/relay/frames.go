package relay

import (
	"encoding/json"
	"strings"

	errs "PPRelay/tools/errs"
)

// 入站事件名
const (
	EvtJoinRoom        = "joinRoom"
	EvtLeaveRoom       = "leaveRoom"
	EvtSendMessage     = "sendMessage"
	EvtUserOnline      = "userOnline"
	EvtTyping          = "typing"
	EvtMessageEdited   = "messageEdited"
	EvtMessageDeleted  = "messageDeleted"
	EvtMessageReaction = "messageReaction"
	EvtMessageRead     = "messageRead"
	EvtCallOffer       = "call:offer"
	EvtCallAnswer      = "call:answer"
	EvtCallCandidate   = "call:ice-candidate"
	EvtCallEnd         = "call:end"
)

// 出站事件名（入站同名的复用上面的常量）
const (
	EvtConnected   = "connected"
	EvtNewMessage  = "newMessage"
	EvtUserOffline = "userOffline"
	EvtUserTyping  = "userTyping"
)

// 限流事件类型，对齐 join/leave/msg 三类
const (
	RateEventJoin  = "join"
	RateEventLeave = "leave"
	RateEventMsg   = "msg"
)

// MaxContentLen 消息正文截断长度（字符数）
const MaxContentLen = 1000

// Frame is the wire frame: {"event": "...", "data": ...}.
// Data stays raw until the matching handler decodes it into its own
// typed payload; anything malformed is dropped at that point.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func ParseFrameJSON(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, errs.ErrBadPayload.WithDetail(err.Error())
	}
	if f.Event == "" {
		return nil, errs.ErrBadPayload.WithDetail("empty event")
	}
	return f, nil
}

// BuildFrame 构造出站帧
func BuildFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Frame{Event: event, Data: raw})
}

// DataMap 解出对象负载；joinRoom/userOnline 这类裸字符串负载用 DataString
func (f *Frame) DataMap() (map[string]any, error) {
	if len(f.Data) == 0 {
		return nil, errs.ErrBadPayload.WithDetail("empty data")
	}
	var m map[string]any
	if err := json.Unmarshal(f.Data, &m); err != nil {
		return nil, errs.ErrBadPayload.WithDetail(err.Error())
	}
	return m, nil
}

func (f *Frame) DataString() (string, error) {
	if len(f.Data) == 0 {
		return "", errs.ErrBadPayload.WithDetail("empty data")
	}
	var s string
	if err := json.Unmarshal(f.Data, &s); err != nil {
		return "", errs.ErrBadPayload.WithDetail(err.Error())
	}
	return s, nil
}

// NormalizeContent trims whitespace and caps the text at MaxContentLen
// characters. Returns "" for whitespace-only input, which callers drop.
func NormalizeContent(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) > MaxContentLen {
		r = r[:MaxContentLen]
	}
	return string(r)
}

// ---- 业务负载 ----

type SendMessagePayload struct {
	Content string `json:"content"`
	RoomID  string `json:"roomId"`
}

type TypingPayload struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
}

type EditPayload struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
	RoomID    string `json:"roomId"`
}

type DeletePayload struct {
	MessageID         string `json:"messageId"`
	RoomID            string `json:"roomId"`
	DeleteForEveryone bool   `json:"deleteForEveryone"`
}

type ReactionPayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	Reactions any    `json:"reactions"`
}

type ReadPayload struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
}

// 信令负载：offer/answer/candidate 对网关完全不透明，原样转发
type CallOfferPayload struct {
	To    string `json:"to"`
	Offer any    `json:"offer"`
	From  string `json:"from"`
}

type CallAnswerPayload struct {
	To     string `json:"to"`
	Answer any    `json:"answer"`
}

type CallCandidatePayload struct {
	To        string `json:"to"`
	Candidate any    `json:"candidate"`
}

type CallEndPayload struct {
	To string `json:"to"`
}
