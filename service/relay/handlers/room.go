package handlers

import (
	"PPRelay/logger"
	"PPRelay/service/relay"
)

// joinRoom / leaveRoom：负载是裸 roomId 字符串，join/leave 各走一类限流。
// 房间首个 join 隐式创建；leave 非成员是 no-op。

type JoinRoomHandler struct{}

func NewJoinRoomHandler() relay.Handler { return &JoinRoomHandler{} }
func (h *JoinRoomHandler) Event() string { return relay.EvtJoinRoom }
func (h *JoinRoomHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	if !ctx.S.Limiter().Allow(c.ConnID, relay.RateEventJoin) {
		return nil
	}
	roomID, err := f.DataString()
	if err != nil || roomID == "" {
		return nil
	}
	ctx.S.Rooms().Join(c, roomID)
	logger.Debugf("[Room] join conn=%s room=%s", c.ConnID, roomID)
	return nil
}

type LeaveRoomHandler struct{}

func NewLeaveRoomHandler() relay.Handler { return &LeaveRoomHandler{} }
func (h *LeaveRoomHandler) Event() string { return relay.EvtLeaveRoom }
func (h *LeaveRoomHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	if !ctx.S.Limiter().Allow(c.ConnID, relay.RateEventLeave) {
		return nil
	}
	roomID, err := f.DataString()
	if err != nil || roomID == "" {
		return nil
	}
	ctx.S.Rooms().Leave(c, roomID)
	logger.Debugf("[Room] leave conn=%s room=%s", c.ConnID, roomID)
	return nil
}
