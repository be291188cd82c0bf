// Package lock provides optional per-cache-key mutual exclusion so that
// concurrent requests for the same derivative compute it once.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serialises work on a key. The returned release func must be
// called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Modes accepted by New.
const (
	ModeNone   = "none"
	ModeMemory = "memory"
	ModeRedis  = "redis"
)

// Defaults used by New for the Redis lock.
const (
	DefaultPrefix         = "asset_bridge:derive:"
	DefaultTTL            = 30 * time.Second
	DefaultAcquireTimeout = 10 * time.Second
)

// New builds the Locker for mode. The redis mode requires a client.
func New(mode string, client *redis.Client) (Locker, error) {
	switch mode {
	case "", ModeNone:
		return Noop{}, nil
	case ModeMemory:
		return NewKeyed(), nil
	case ModeRedis:
		if client == nil {
			return nil, fmt.Errorf("redis lock requires redis to be enabled")
		}
		return NewDistributed(client, DefaultPrefix, DefaultTTL, DefaultAcquireTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported lock mode: %s", mode)
	}
}

// Noop never blocks. Concurrent callers may duplicate work.
type Noop struct{}

func (Noop) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
