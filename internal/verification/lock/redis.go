package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"veriflow/pkg/platform/sentinel"
)

// releaseScript deletes the lock only when this process still owns it, so a
// slow request cannot release a lock that already expired and was re-taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is the cross-instance initiation lock, a single-key SET NX lease.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	owner := uuid.NewString()
	redisKey := "veriflow:lock:" + key

	ok, err := r.client.SetNX(ctx, redisKey, owner, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, sentinel.ErrLockHeld
	}

	release := func() {
		// Release must work even when the request context is already done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(ctx, r.client, []string{redisKey}, owner).Result()
	}
	return release, nil
}
