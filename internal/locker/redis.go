package locker

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const lockKeyPrefix = "lock:"

// releaseScript deletes the lock key only when it is still held by the
// releasing holder, so an expired lease taken over by someone else is left
// alone.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker backs leases with SET NX and a key TTL.
type RedisLocker struct {
	client *goredis.Client
}

func NewRedisLocker(client *goredis.Client) *RedisLocker {
	return &RedisLocker{client}
}

func (r *RedisLocker) Acquire(ctx context.Context, resourceID, holderID string, ttl time.Duration) (*Lease, error) {
	ok, err := r.client.SetNX(ctx, lockKeyPrefix+resourceID, holderID, ttl).Result()

	if err != nil {
		return nil, fmt.Errorf("redis lock acquire: %w", err)
	}

	if !ok {
		return nil, ErrLockBusy
	}

	return &Lease{
		ResourceID: resourceID,
		HolderID:   holderID,
		ExpiresAt:  time.Now().Add(ttl),
	}, nil
}

func (r *RedisLocker) Release(ctx context.Context, lease *Lease) error {
	return releaseScript.Run(ctx, r.client, []string{lockKeyPrefix + lease.ResourceID}, lease.HolderID).Err()
}
