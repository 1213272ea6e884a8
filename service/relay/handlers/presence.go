package handlers

import (
	"PPRelay/logger"
	"PPRelay/service/relay"
)

// userOnline：客户端宣告身份。网关信任宣告的 userId（鉴权在上游），
// 绑定到连接后向所有连接广播，并 best-effort 写 redis 镜像。

type UserOnlineHandler struct{}

func NewUserOnlineHandler() relay.Handler { return &UserOnlineHandler{} }
func (h *UserOnlineHandler) Event() string { return relay.EvtUserOnline }
func (h *UserOnlineHandler) Handle(ctx *relay.Context, f *relay.Frame, c *relay.Client) error {
	userID, err := f.DataString()
	if err != nil || userID == "" {
		return nil
	}

	if berr := ctx.S.ConnMgr().BindUser(c.ConnID, userID); berr != nil {
		logger.Infof("[Presence] bind user err conn=%s: %v", c.ConnID, berr)
		return nil
	}
	ctx.S.Presence().Announce(c.ConnID, userID)
	ctx.S.MirrorOnlineAsync(userID)

	ctx.S.BroadcastAll(relay.EvtUserOnline, userID)
	logger.Infof("[Presence] online user=%s conn=%s", userID, c.ConnID)
	return nil
}
