package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DistributedLock implements a per-key exclusive lock backed by Redis so
// that several processes sharing a cache directory derive each key once.
type DistributedLock struct {
	client         *redis.Client
	prefix         string
	lockTTL        time.Duration
	acquireTimeout time.Duration
}

// NewDistributed creates a DistributedLock.
//   - prefix: prepended to every key (e.g. "asset_bridge:derive:")
//   - ttl: how long a lock is held before auto-expiry (prevents deadlock)
//   - acquireTimeout: max time to wait when trying to acquire a lock
func NewDistributed(client *redis.Client, prefix string, ttl, acquireTimeout time.Duration) *DistributedLock {
	return &DistributedLock{
		client:         client,
		prefix:         prefix,
		lockTTL:        ttl,
		acquireTimeout: acquireTimeout,
	}
}

// Lock acquires key and returns a func releasing it.
func (l *DistributedLock) Lock(ctx context.Context, key string) (func(), error) {
	lockID, err := l.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := l.Release(context.Background(), key, lockID); err != nil {
			hlog.Warnf("[cdn][lock] release %s: %v", key, err)
		}
	}, nil
}

// Acquire attempts to obtain the lock, blocking with exponential backoff
// until success or timeout. Returns a unique lockID used for Release.
func (l *DistributedLock) Acquire(ctx context.Context, key string) (string, error) {
	lockID := uuid.New().String()
	deadline := time.Now().Add(l.acquireTimeout)
	backoff := 50 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, l.prefix+key, lockID, l.lockTTL).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return lockID, nil
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("timeout acquiring lock %s after %s", key, l.acquireTimeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}

		// exponential backoff, max 500ms
		backoff *= 2
		if backoff > 500*time.Millisecond {
			backoff = 500 * time.Millisecond
		}
	}
}

// releaseScript atomically checks that the lock value matches before deleting,
// preventing a client from releasing a lock it no longer owns.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// Release releases the lock only if it is still owned by the given lockID.
func (l *DistributedLock) Release(ctx context.Context, key, lockID string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, lockID).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
