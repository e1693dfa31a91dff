package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// only the holder's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every API replica. The TTL bounds how long a
// crashed holder can block a session; it must exceed the slowest turn.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger *logrus.Logger
}

func NewRedis(rdb redis.UniversalClient, prefix string, ttl time.Duration, l *logrus.Logger) *Redis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl, logger: l}
}

func (r *Redis) TryLock(ctx context.Context, key string) (Release, bool, error) {
	full := r.prefix + "lock:" + key
	token := uuid.NewString()

	ok, err := r.rdb.SetNX(ctx, full, token, r.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's ctx may already be done
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, r.rdb, []string{full}, token).Err(); err != nil && r.logger != nil {
				r.logger.WithError(err).WithField("key", full).Warn("lock release failed")
			}
		})
	}, true, nil
}
