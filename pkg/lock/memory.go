package lock

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	token   uint64
	expires time.Time
}

type memoryLocker struct {
	mu    sync.Mutex
	next  uint64
	held  map[string]entry
	clock func() time.Time
}

// NewMemoryLocker returns a process-local Locker for single-instance deployments.
func NewMemoryLocker() Locker {
	return &memoryLocker{
		held:  make(map[string]entry),
		clock: time.Now,
	}
}

func (l *memoryLocker) tryAcquire(key string, ttl time.Duration) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return 0, false
	}
	l.next++
	l.held[key] = entry{token: l.next, expires: now.Add(ttl)}
	return l.next, true
}

func (l *memoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	for {
		if token, ok := l.tryAcquire(key, ttl); ok {
			return func() {
				l.mu.Lock()
				defer l.mu.Unlock()
				if e, ok := l.held[key]; ok && e.token == token {
					delete(l.held, key)
				}
			}, nil
		}
		if err := wait(ctx); err != nil {
			return nil, err
		}
	}
}
