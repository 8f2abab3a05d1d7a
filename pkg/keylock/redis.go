package keylock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/guildsync/pkg/xcontext"
	"github.com/questx-lab/guildsync/pkg/xredis"
)

const (
	redisKeyPrefix     = "guildsync:lock:"
	redisRetryInterval = 50 * time.Millisecond
	redisUnlockTimeout = 5 * time.Second
)

// RedisLocker serializes holders of the same key across every process sharing
// the redis server. A lock which is not released expires after ttl, so ttl
// must exceed the longest critical section.
type RedisLocker struct {
	client        xredis.Client
	ttl           time.Duration
	retryInterval time.Duration
}

func NewRedisLocker(client xredis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, retryInterval: redisRetryInterval}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := redisKeyPrefix + key
	owner := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, owner, l.ttl)
		if err != nil {
			return nil, err
		}

		if ok {
			break
		}

		timer := time.NewTimer(l.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The request context may already be cancelled at this point.
			unlockCtx, cancel := context.WithTimeout(context.Background(), redisUnlockTimeout)
			defer cancel()

			released, err := l.client.DelIfEqual(unlockCtx, redisKey, owner)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot release lock %s: %v", key, err)
			} else if !released {
				xcontext.Logger(ctx).Warnf("Lock %s expired before release", key)
			}
		})
	}, nil
}
