package bridge

import "golang.org/x/net/context"

// BridgeMessage 统一消息对象
type BridgeMessage struct {
	Subject string
	Data    []byte
	Header  map[string]string
}

// BridgeHandler 业务处理函数
type BridgeHandler func(ctx context.Context, msg BridgeMessage) error

// BridgeMiddleware 中间件（日志、指标、重试等）
type BridgeMiddleware func(BridgeHandler) BridgeHandler

// BridgeChain 组合中间件
func BridgeChain(h BridgeHandler, mws ...BridgeMiddleware) BridgeHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
