package exotel

import (
	"context"
	"errors"
	"time"

	"exotel-connector/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// CallLocker serializes reconciliation of one call across replicas.
type CallLocker interface {
	Lock(ctx context.Context, callSid string) (unlock func(), err error)
}

var ErrLockTimeout = errors.New("exotel: call lock wait timed out")

const callLockPrefix = "exotel:call-lock:"

// lockBackend is a single-attempt, token-owned lock.
type lockBackend interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type redisLockBackend struct{ rdb *redis.Client }

func (b redisLockBackend) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	return utils.AcquireLock(ctx, b.rdb, key, ttl)
}

func (b redisLockBackend) Release(ctx context.Context, key, token string) error {
	return utils.ReleaseLock(ctx, b.rdb, key, token)
}

// RedisCallLocker polls a SET NX key until it is acquired or the wait budget runs out.
// The key expires after ttl so a crashed holder cannot wedge the call.
type RedisCallLocker struct {
	backend lockBackend
	ttl     time.Duration
	wait    time.Duration
	poll    time.Duration
}

func NewRedisCallLocker(rdb *redis.Client, ttl time.Duration) *RedisCallLocker {
	return newCallLocker(redisLockBackend{rdb: rdb}, ttl, 3*time.Second, 50*time.Millisecond)
}

func newCallLocker(b lockBackend, ttl, wait, poll time.Duration) *RedisCallLocker {
	return &RedisCallLocker{backend: b, ttl: ttl, wait: wait, poll: poll}
}

func (l *RedisCallLocker) Lock(ctx context.Context, callSid string) (func(), error) {
	key := callLockPrefix + callSid
	deadline := time.Now().Add(l.wait)

	for {
		token, ok, err := l.backend.TryAcquire(ctx, key, l.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				// The request context may already be done; release on a fresh one.
				rctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = l.backend.Release(rctx, key, token)
			}, nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrLockTimeout
		}

		t := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}
