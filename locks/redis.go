package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock taken over by another instance is never released by us.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	log    *zap.Logger
}

// NewRedisLocker returns a locker whose keys expire after ttl and whose Lock
// gives up after wait. Failed or late releases are reported on log.
func NewRedisLocker(client *redis.Client, prefix string, ttl, wait time.Duration, log *zap.Logger) *RedisLocker {
	if prefix == "" {
		prefix = "lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl, wait: wait, log: log}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	k := l.prefix + ":" + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	backoff := 10 * time.Millisecond
	for {
		ok, err := l.client.SetNX(waitCtx, k, token, l.ttl).Result()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return nil, ctx.Err()
			case waitCtx.Err() != nil:
				// the deadline can surface as a network timeout mid command
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(k, token) })
	}, nil
}

func (l *RedisLocker) release(k, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := unlockScript.Run(ctx, l.client, []string{k}, token).Int64()
	switch {
	case err != nil:
		l.log.Error("release lock failed, held until ttl", zap.String("key", k), zap.Duration("ttl", l.ttl), zap.Error(err))
	case n == 0:
		l.log.Warn("lock expired before release", zap.String("key", k), zap.Duration("ttl", l.ttl))
	}
}
