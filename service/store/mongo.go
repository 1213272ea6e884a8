package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"PPRelay/service/relay"
)

const (
	defaultCollection     = "messages"
	defaultConnectTimeout = 5 * time.Second
)

// Config represents the MongoDB configuration.
type Config struct {
	Uri            string // 完整 URI，可含 ?authSource=admin 等参数
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

func (c *Config) norm() {
	if c.Collection == "" {
		c.Collection = defaultCollection
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
}

// MongoStore is the durable side of sendMessage. The relay never waits on
// it: writes happen on their own goroutine with their own timeout, and a
// failure costs the history entry, not the broadcast.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoStore(ctx context.Context, cfg Config) (*MongoStore, error) {
	cfg.norm()
	if cfg.Uri == "" || cfg.Database == "" {
		return nil, errors.New("mongo uri/database empty")
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	cli, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.Uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	if err := cli.Ping(cctx, nil); err != nil {
		return nil, errors.Wrap(err, "mongo ping")
	}

	return &MongoStore{
		client: cli,
		coll:   cli.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) SaveMessage(ctx context.Context, m *relay.StoredMessage) error {
	if m == nil {
		return errors.New("nil message")
	}
	_, err := s.coll.InsertOne(ctx, bson.M{
		"room_id":    m.RoomID,
		"sender_id":  m.SenderID,
		"content":    m.Content,
		"created_at": m.SentAt,
	})
	return errors.Wrap(err, "insert message")
}

// History 拉取房间最近 limit 条（新成员补历史用）
func (s *MongoStore) History(ctx context.Context, roomID string, limit int64) ([]relay.StoredMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.coll.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find messages")
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []relay.StoredMessage
	for cur.Next(ctx) {
		var doc struct {
			RoomID    string    `bson:"room_id"`
			SenderID  string    `bson:"sender_id"`
			Content   string    `bson:"content"`
			CreatedAt time.Time `bson:"created_at"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode message")
		}
		out = append(out, relay.StoredMessage{
			RoomID:   doc.RoomID,
			SenderID: doc.SenderID,
			Content:  doc.Content,
			SentAt:   doc.CreatedAt,
		})
	}
	return out, errors.Wrap(cur.Err(), "cursor")
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
