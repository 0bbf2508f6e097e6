package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisLocker(client *redis.Client, log *zap.Logger) Locker {
	return &redisLocker{
		client: client,
		prefix: "travel-booking:lock:",
		log:    log.With(zap.String("locker", "redis")),
	}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	name := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, name, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		if err := wait(ctx); err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
	}

	release := func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{name}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
		}
	}

	return release, nil
}
