package relay

import (
	"context"
	"time"

	"PPRelay/logger"
	errs "PPRelay/tools/errs"
)

// ===== 外部协作方（接口收敛在这里，实现在 service/store / service/bridge / service/storage）=====

// MessageStore durably stores chat messages. Invoked off the relay path;
// a failed or stalled write never blocks or rolls back the broadcast.
type MessageStore interface {
	SaveMessage(ctx context.Context, m *StoredMessage) error
}

type StoredMessage struct {
	RoomID   string    `json:"roomId"`
	SenderID string    `json:"senderId"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
}

// Notifier dispatches push notifications for room messages.
type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}

type Notification struct {
	RoomID   string `json:"room_id"`
	FromUser string `json:"from_user"`
	Preview  string `json:"preview"`
	Ts       int64  `json:"ts"`
}

// Bridge fans broadcasts out to peer gateway nodes.
type Bridge interface {
	PublishRoom(roomID string, frame []byte) error
	PublishGlobal(frame []byte) error
	Close() error
}

// PresenceMirror mirrors online/offline transitions to shared storage so
// peer nodes can look presence up. Purely best-effort.
type PresenceMirror interface {
	Online(userID, nodeID string, ttl time.Duration) error
	Offline(userID string) error
}

// ===== Server =====

type Options struct {
	NodeID        string
	SendQueueSize int
	FanoutWorkers int // 默认 1：保证同一发送者的广播在每个接收端按序到达
	FanoutQueue   int
	RateLimit     RateLimiterConf
	PresenceTTL   time.Duration
}

func (o *Options) norm() {
	if o.NodeID == "" {
		o.NodeID = "relay-1"
	}
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 256
	}
	if o.FanoutWorkers <= 0 {
		o.FanoutWorkers = 1
	}
	if o.FanoutQueue <= 0 {
		o.FanoutQueue = 1024
	}
	if o.PresenceTTL <= 0 {
		o.PresenceTTL = 120 * time.Second
	}
}

// Server is the connection hub: it owns the conn/room/presence/rate maps
// and every broadcast goes through it. Handlers only ever touch shared
// state via the managers here.
type Server struct {
	nodeID      string
	connMgr     *ConnManager
	rooms       *RoomManager
	presence    *PresenceManager
	limiter     *RateLimiter
	disp        *Dispatcher
	fanout      *Fanout
	presenceTTL time.Duration

	store    MessageStore
	notifier Notifier
	bridge   Bridge
	mirror   PresenceMirror
}

func NewServer(opts Options) *Server {
	opts.norm()
	return &Server{
		nodeID:      opts.NodeID,
		connMgr:     NewConnManager(ManagerConf{SendQueueSize: opts.SendQueueSize}),
		rooms:       NewRoomManager(),
		presence:    NewPresenceManager(),
		limiter:     NewRateLimiter(opts.RateLimit),
		disp:        NewDispatcher(),
		fanout:      NewFanout(opts.FanoutWorkers, opts.FanoutQueue),
		presenceTTL: opts.PresenceTTL,
	}
}

func (s *Server) NodeID() string             { return s.nodeID }
func (s *Server) ConnMgr() *ConnManager      { return s.connMgr }
func (s *Server) Rooms() *RoomManager        { return s.rooms }
func (s *Server) Presence() *PresenceManager { return s.presence }
func (s *Server) Limiter() *RateLimiter      { return s.limiter }
func (s *Server) Disp() *Dispatcher          { return s.disp }
func (s *Server) PresenceTTL() time.Duration { return s.presenceTTL }

func (s *Server) Register(h Handler) { s.disp.Register(h) }

func (s *Server) SetStore(st MessageStore)   { s.store = st }
func (s *Server) SetNotifier(n Notifier)     { s.notifier = n }
func (s *Server) SetBridge(b Bridge)         { s.bridge = b }
func (s *Server) SetMirror(m PresenceMirror)    { s.mirror = m }

// ===== 广播 =====

// BroadcastAll 发给本节点所有连接，并经 bridge 扩散到其他节点
func (s *Server) BroadcastAll(event string, data any) {
	payload, err := BuildFrame(event, data)
	if err != nil {
		logger.Errorf("[Relay] build frame event=%s err=%v", event, err)
		return
	}
	s.fanout.Broadcast(s.connMgr.ListAll(), payload)
	if s.bridge != nil {
		if err := s.bridge.PublishGlobal(payload); err != nil {
			logger.Warnf("[Relay] bridge global publish err=%v", err)
		}
	}
}

// BroadcastRoom 发给房间成员；except 不为空时跳过该连接（typing 不回发）
func (s *Server) BroadcastRoom(roomID, event string, data any, except *Client) {
	payload, err := BuildFrame(event, data)
	if err != nil {
		logger.Errorf("[Relay] build frame event=%s err=%v", event, err)
		return
	}
	var members []*Client
	if except != nil {
		members = s.rooms.MembersExcept(roomID, except)
	} else {
		members = s.rooms.Members(roomID)
	}
	s.fanout.Broadcast(members, payload)
	if s.bridge != nil {
		if err := s.bridge.PublishRoom(roomID, payload); err != nil {
			logger.Warnf("[Relay] bridge room publish room=%s err=%v", roomID, err)
		}
	}
}

// SendToConn 单连接定向投递（信令转发用）
func (s *Server) SendToConn(connID, event string, data any) error {
	c, ok := s.connMgr.Get(connID)
	if !ok {
		return errs.ErrConnNotFound.WithDetail(connID)
	}
	payload, err := BuildFrame(event, data)
	if err != nil {
		return err
	}
	c.Enqueue(payload)
	return nil
}

// DeliverRoom 处理来自 bridge 的远端房间广播：只投本地成员，不再回发
func (s *Server) DeliverRoom(roomID string, frame []byte) {
	s.fanout.Broadcast(s.rooms.Members(roomID), frame)
}

// DeliverAll 处理来自 bridge 的远端全局广播
func (s *Server) DeliverAll(frame []byte) {
	s.fanout.Broadcast(s.connMgr.ListAll(), frame)
}

// ===== 断开清理 =====

// HandleDisconnect runs the full teardown for one connection: presence
// transition (userOffline + implicit call:end), room membership, rate
// counters, conn indexes. Safe to call once per connection only.
func (s *Server) HandleDisconnect(c *Client) {
	if c == nil {
		return
	}

	userID, announced := s.presence.Drop(c.ConnID)
	s.rooms.DropConn(c)
	s.limiter.DropConn(c.ConnID)
	s.connMgr.Remove(c.ConnID)

	if announced {
		// 突然断开视为通话结束
		s.BroadcastAll(EvtUserOffline, userID)
		s.BroadcastAll(EvtCallEnd, map[string]any{"from": c.ConnID})
		if s.mirror != nil {
			go func() {
				if err := s.mirror.Offline(userID); err != nil {
					logger.Debugf("[Relay] presence mirror offline user=%s err=%v", userID, err)
				}
			}()
		}
	}

	c.CloseSend()
	logger.Infof("[Relay] disconnected conn=%s user=%s", c.ConnID, userID)
}

// ===== 异步协作方调用 =====

// SaveMessageAsync persists off the relay path with its own timeout; the
// broadcast has already been enqueued by the time this runs.
func (s *Server) SaveMessageAsync(m *StoredMessage) {
	if s.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.store.SaveMessage(ctx, m); err != nil {
			logger.Warnf("[Relay] save message room=%s err=%v", m.RoomID, err)
		}
	}()
}

func (s *Server) NotifyAsync(n *Notification) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, n); err != nil {
			logger.Debugf("[Relay] notify room=%s err=%v", n.RoomID, err)
		}
	}()
}

// MirrorOnlineAsync 上线状态写 redis（best-effort）
func (s *Server) MirrorOnlineAsync(userID string) {
	if s.mirror == nil {
		return
	}
	go func() {
		if err := s.mirror.Online(userID, s.nodeID, s.presenceTTL); err != nil {
			logger.Debugf("[Relay] presence mirror online user=%s err=%v", userID, err)
		}
	}()
}

// Close 进程退出：断开 bridge、关闭全部连接
func (s *Server) Close() {
	if s.bridge != nil {
		if err := s.bridge.Close(); err != nil {
			logger.Warnf("[Relay] bridge close err=%v", err)
		}
	}
	s.connMgr.Close()
}
