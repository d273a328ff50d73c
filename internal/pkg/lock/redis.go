// Package lock provides short-lived, token-guarded Redis locks.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/hamroride/internal/pkg/database"
)

// releaseScript deletes the key only while it still holds the caller's token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Lease is a held lock. Release it with the Locker that issued it.
type Lease struct {
	Key   string
	Token string
}

// RedisLocker issues leases backed by SET NX PX
type RedisLocker struct {
	redis *database.RedisClient
}

// NewRedisLocker creates a locker on top of the shared Redis client
func NewRedisLocker(redis *database.RedisClient) *RedisLocker {
	return &RedisLocker{redis: redis}
}

// TryAcquire takes the lock if it is free. ok is false when somebody else holds it.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (*Lease, bool, error) {
	token := uuid.NewString()
	ok, err := l.redis.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &Lease{Key: key, Token: token}, true, nil
}

// Release frees the lease. Releasing an expired or stolen lease is a no-op.
func (l *RedisLocker) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	if _, err := l.redis.Eval(ctx, releaseScript, []string{lease.Key}, lease.Token); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", lease.Key, err)
	}
	return nil
}
