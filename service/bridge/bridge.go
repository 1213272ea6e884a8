package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"PPRelay/logger"
)

// 跨节点扩散：本节点的房间/全局广播发布到 NATS，其他节点收到后只投给
// 自己本地的成员。Envelope 带 node 字段做回环保护。

const (
	SubjectRoom   = "relay.room"
	SubjectGlobal = "relay.global"
	SubjectNotify = "relay.notify"
)

// Envelope 跨节点帧封装
type Envelope struct {
	Node  string          `json:"node"`
	Room  string          `json:"room,omitempty"`
	Frame json.RawMessage `json:"frame"`
}

func EncodeEnvelope(node, room string, frame []byte) ([]byte, error) {
	return json.Marshal(&Envelope{Node: node, Room: room, Frame: frame})
}

func DecodeEnvelope(raw []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, errors.Wrap(err, "decode envelope")
	}
	if env.Node == "" {
		return nil, errors.New("envelope missing node")
	}
	return env, nil
}

// Deliverer 本地投递回调（由 relay.Server 实现）
type Deliverer interface {
	DeliverRoom(roomID string, frame []byte)
	DeliverAll(frame []byte)
}

// ===== 配置 =====

type Config struct {
	Servers       []string
	Name          string
	ReconnectWait time.Duration
	Timeout       time.Duration
}

func (c *Config) norm() {
	if c.Name == "" {
		c.Name = "relay-bridge"
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 500 * time.Millisecond
	}
	if c.Timeout == 0 {
		c.Timeout = 3 * time.Second
	}
}

type NatsBridge struct {
	cfg    Config
	nodeID string
	nc     *nats.Conn

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewNatsBridge 连接 NATS 并订阅 room/global 两个 subject
func NewNatsBridge(cfg Config, nodeID string, d Deliverer, mws ...BridgeMiddleware) (*NatsBridge, error) {
	cfg.norm()
	if len(cfg.Servers) == 0 {
		return nil, errors.New("nats servers missing")
	}
	if nodeID == "" {
		return nil, errors.New("node id missing")
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "nats connect")
	}

	b := &NatsBridge{cfg: cfg, nodeID: nodeID, nc: nc}
	if d != nil {
		if err := b.subscribe(d, mws...); err != nil {
			_ = nc.Drain()
			return nil, err
		}
	}
	return b, nil
}

func (b *NatsBridge) subscribe(d Deliverer, mws ...BridgeMiddleware) error {
	h := BridgeChain(func(_ context.Context, msg BridgeMessage) error {
		env, err := DecodeEnvelope(msg.Data)
		if err != nil {
			return err
		}
		if env.Node == b.nodeID {
			// 自己发布的，跳过
			return nil
		}
		if env.Room != "" {
			d.DeliverRoom(env.Room, env.Frame)
		} else {
			d.DeliverAll(env.Frame)
		}
		return nil
	}, mws...)

	cb := func(m *nats.Msg) {
		if err := h(context.Background(), BridgeMessage{Subject: m.Subject, Data: m.Data}); err != nil {
			logger.Warnf("[Bridge] handle subject=%s err=%v", m.Subject, err)
		}
	}

	for _, subject := range []string{SubjectRoom, SubjectGlobal} {
		sub, err := b.nc.Subscribe(subject, cb)
		if err != nil {
			return errors.Wrapf(err, "subscribe %s", subject)
		}
		b.mu.Lock()
		b.subs = append(b.subs, sub)
		b.mu.Unlock()
	}
	return nil
}

// PublishRoom 房间广播扩散
func (b *NatsBridge) PublishRoom(roomID string, frame []byte) error {
	data, err := EncodeEnvelope(b.nodeID, roomID, frame)
	if err != nil {
		return err
	}
	return b.nc.Publish(SubjectRoom, data)
}

// PublishGlobal 全局广播扩散
func (b *NatsBridge) PublishGlobal(frame []byte) error {
	data, err := EncodeEnvelope(b.nodeID, "", frame)
	if err != nil {
		return err
	}
	return b.nc.Publish(SubjectGlobal, data)
}

// Close 优雅关闭：先 drain 订阅再断连接
func (b *NatsBridge) Close() error {
	b.mu.Lock()
	for _, sub := range b.subs {
		_ = sub.Drain()
	}
	b.subs = nil
	b.mu.Unlock()
	if b.nc != nil {
		return b.nc.Drain()
	}
	return nil
}
