package storage

import (
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	errs "PPRelay/tools/errs"
)

// presence key: im:presence:<user>
// Value: node_id, TTL controls the online validity period
func presenceKey(user string) string { return "im:presence:" + user }

// PresenceOnline sets the user as online on the given node and renews the TTL
func PresenceOnline(user, nodeID string, ttl time.Duration) error {
	if rdb == nil {
		return errs.ErrNotReady.WithDetail("redis")
	}
	return rdb.Set(ctx, presenceKey(user), nodeID, ttl).Err()
}

// PresenceOffline actively sets the user offline (deletes the key)
func PresenceOffline(user string) error {
	if rdb == nil {
		return errs.ErrNotReady.WithDetail("redis")
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup checks whether the user is online anywhere in the cluster
func PresenceLookup(user string) (nodeID string, online bool, err error) {
	if rdb == nil {
		return "", false, errs.ErrNotReady.WithDetail("redis")
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Mirror 适配 relay.PresenceMirror
type Mirror struct{}

func (Mirror) Online(userID, nodeID string, ttl time.Duration) error {
	return PresenceOnline(userID, nodeID, ttl)
}

func (Mirror) Offline(userID string) error {
	return PresenceOffline(userID)
}
