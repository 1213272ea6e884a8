package relay

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"PPRelay/logger"
)

var upgrader = websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096, CheckOrigin: func(r *http.Request) bool { return true }}

const writeDeadline = 5 * time.Second

// HandleWS ===== WebSocket 入口 =====
// 升级连接 -> 登记 -> 回 connected 帧 -> 读循环派发 -> 退出清理。
// 每连接一个读协程（本函数）+ 一个写协程（writePump）。
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// 常见：非 WebSocket 请求/握手失败
		logger.Infof("[WS] upgrade websocket error: %v", err)
		return
	}

	client := s.connMgr.Add(ws)
	go s.writePump(client)

	// 客户端需要自己的 conn_id 才能收发信令（call:* 以 conn_id 定向）
	if ack, aerr := BuildFrame(EvtConnected, map[string]any{"connId": client.ConnID, "nodeId": s.nodeID}); aerr == nil {
		client.Enqueue(ack)
	}

	logger.Infof("[WS] connected conn=%s remote=%s", client.ConnID, ws.RemoteAddr())

	// ---- 读循环：只读不写，出错即退出（写协程收尾）----
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[WS] peer closed conn=%s err=%v", client.ConnID, rerr)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[WS] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[WS] read err conn=%s err=%v", client.ConnID, rerr)
			}
			break
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		f, perr := ParseFrameJSON(data)
		if perr != nil {
			// 只打印简短样本
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Infof("[WS] parse frame err conn=%s err=%v sample=%q len=%d",
				client.ConnID, perr, sample, len(data))
			continue
		}

		// 事件全部 fail-silent：派发失败只记日志，不回错误帧
		if derr := s.disp.Dispatch(&Context{S: s}, f, client); derr != nil {
			logger.Debugf("[WS] dispatch event=%s conn=%s err=%v", f.Event, client.ConnID, derr)
		}
	}

	s.HandleDisconnect(client)
}

// writePump 单写协程：排空 Send 队列写 ws，队列关闭后关 socket
func (s *Server) writePump(c *Client) {
	for payload := range c.Send {
		if c.WS == nil {
			continue
		}
		if err := c.WS.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
			break
		}
		if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Infof("[WS] write err conn=%s err=%v", c.ConnID, err)
			break
		}
	}
	closeQuiet(c.WS)
}
