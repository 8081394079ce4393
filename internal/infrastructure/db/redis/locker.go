package redis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/storefront-accounts/internal/core/domain"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 3 * time.Second
	lockRetryDelay  = 25 * time.Millisecond
)

// releaseScript deletes the lock only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a distributed keyed lock built on SET NX PX.
// Key format: lock:<key>
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
}

// NewLocker creates a Locker. Zero durations fall back to the defaults.
func NewLocker(client redis.UniversalClient, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &Locker{client: client, ttl: ttl, wait: wait}
}

// Acquire takes every key, retrying until the wait budget is spent. Keys
// are taken in sorted order so two callers never hold each other's keys.
func (l *Locker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = append([]string(nil), keys...)
	sort.Strings(keys)
	token := uuid.NewString()

	deadline := time.Now().Add(l.wait)
	var taken []string
	for _, k := range keys {
		if len(taken) > 0 && taken[len(taken)-1] == k {
			continue
		}
		for {
			ok, err := l.client.SetNX(ctx, l.key(k), token, l.ttl).Result()
			if err != nil {
				l.release(taken, token)
				return nil, fmt.Errorf("acquire lock: %w", err)
			}
			if ok {
				taken = append(taken, k)
				break
			}
			if time.Now().After(deadline) {
				l.release(taken, token)
				return nil, domain.ErrLocked
			}
			select {
			case <-ctx.Done():
				l.release(taken, token)
				return nil, ctx.Err()
			case <-time.After(lockRetryDelay):
			}
		}
	}

	return func() { l.release(taken, token) }, nil
}

func (l *Locker) release(keys []string, token string) {
	// Released with a fresh context so a cancelled request still frees its keys.
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	for _, k := range keys {
		_ = releaseScript.Run(ctx, l.client, []string{l.key(k)}, token).Err()
	}
}

func (l *Locker) key(k string) string {
	return "lock:" + k
}
