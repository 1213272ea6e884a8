package global

import (
	"time"

	"PPRelay/logger"
	"PPRelay/service/storage"
	"PPRelay/tools"
	"PPRelay/tools/ids"
)

// 节点角色：目前只有 relay 网关一种，保留常量便于扩展
const NodeTypeRelayGateway = "relayGateway"

type RedisConf struct {
	Addr     string
	Password string
	DB       int
}

type MongoConf struct {
	Uri        string
	Database   string
	Collection string
}

type NatsConf struct {
	Servers []string
	Name    string
}

type AppConfig struct {
	NodeType string
	NodeID   string // 节点ID（presence 镜像的 value、bridge 回环保护）
	NodeNum  int64  // 雪花节点号 0~1023
	Port     int

	SendQueueSize  int
	FanoutWorkers  int
	FanoutQueue    int
	RateLimit      int // 每窗口事件数上限
	RateWindowSec  int
	PresenceTTLSec int

	Redis RedisConf
	Mongo MongoConf
	Nats  NatsConf
}

var Global = AppConfig{
	NodeType:       NodeTypeRelayGateway,
	NodeID:         "relay_1",
	NodeNum:        1,
	Port:           8080,
	SendQueueSize:  256,
	FanoutWorkers:  1, // 单 worker 保证广播顺序
	FanoutQueue:    1024,
	RateLimit:      30,
	RateWindowSec:  60,
	PresenceTTLSec: 120,
	Redis:          RedisConf{Addr: "127.0.0.1:6379"},
	Mongo:          MongoConf{Database: "pprelay", Collection: "messages"},
	Nats:           NatsConf{Name: "pprelay-bridge"},
}

// Load 环境变量覆盖默认值
func Load() {
	Global.NodeID = tools.GetEnv("RELAY_NODE_ID", Global.NodeID)
	Global.NodeNum = int64(tools.GetEnvInt("RELAY_NODE_NUM", int(Global.NodeNum)))
	Global.Port = tools.GetEnvInt("RELAY_PORT", Global.Port)
	Global.RateLimit = tools.GetEnvInt("RELAY_RATE_LIMIT", Global.RateLimit)
	Global.RateWindowSec = tools.GetEnvInt("RELAY_RATE_WINDOW_SEC", Global.RateWindowSec)
	Global.PresenceTTLSec = tools.GetEnvInt("RELAY_PRESENCE_TTL_SEC", Global.PresenceTTLSec)

	Global.Redis.Addr = tools.GetEnv("REDIS_ADDR", Global.Redis.Addr)
	Global.Redis.Password = tools.GetEnv("REDIS_PASSWORD", Global.Redis.Password)
	Global.Redis.DB = tools.GetEnvInt("REDIS_DB", Global.Redis.DB)

	Global.Mongo.Uri = tools.GetEnv("MONGO_URI", Global.Mongo.Uri)
	Global.Mongo.Database = tools.GetEnv("MONGO_DB", Global.Mongo.Database)
	Global.Mongo.Collection = tools.GetEnv("MONGO_COLLECTION", Global.Mongo.Collection)

	Global.Nats.Servers = tools.GetEnvList("NATS_SERVERS", Global.Nats.Servers)
	Global.Nats.Name = tools.GetEnv("NATS_NAME", Global.Nats.Name)
}

func ConfigIds() {
	logger.Infof("配置id生成 node=%d", Global.NodeNum)
	ids.SetNodeID(Global.NodeNum)
}

// ConfigRedis presence 镜像是 best-effort，失败只告警不退出
func ConfigRedis() error {
	return storage.InitRedis(storage.Config{
		Addr:     Global.Redis.Addr,
		Password: Global.Redis.Password,
		DB:       Global.Redis.DB,
	})
}

func PresenceTTL() time.Duration {
	return time.Duration(Global.PresenceTTLSec) * time.Second
}

func RateWindow() time.Duration {
	return time.Duration(Global.RateWindowSec) * time.Second
}
