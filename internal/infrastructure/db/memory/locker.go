package memory

import (
	"context"
	"sort"
	"sync"
)

// Locker is a keyed lock for a single process. Acquire waits until every
// requested key is free or ctx is done.
type Locker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]chan struct{})}
}

func (l *Locker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = dedupKeys(keys)
	for {
		l.mu.Lock()
		var busy chan struct{}
		for _, k := range keys {
			if ch, ok := l.held[k]; ok {
				busy = ch
				break
			}
		}
		if busy == nil {
			for _, k := range keys {
				l.held[k] = make(chan struct{})
			}
			l.mu.Unlock()
			return l.releaseFunc(keys), nil
		}
		l.mu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *Locker) releaseFunc(keys []string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for _, k := range keys {
				if ch, ok := l.held[k]; ok {
					close(ch)
					delete(l.held, k)
				}
			}
		})
	}
}

func dedupKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
