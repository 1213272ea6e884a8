package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

var (
	rdb *redis.Client
	ctx = context.Background()
)

func InitRedis(c Config) error {
	cli := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return err
	}
	rdb = cli
	return nil
}

// Ready reports whether InitRedis succeeded; mirror calls are skipped otherwise.
func Ready() bool { return rdb != nil }
