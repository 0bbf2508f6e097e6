// Package lock provides short-lived named locks used to serialize booking
// creation per listing.
package lock

import (
	"context"
	"errors"
	"time"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires the named lock for at most ttl. The returned release func
// is safe to call once the lock has already expired.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// pollInterval is how long Acquire waits between attempts on a held lock.
const pollInterval = 25 * time.Millisecond

func wait(ctx context.Context) error {
	timer := time.NewTimer(pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errors.Join(ErrNotAcquired, ctx.Err())
	case <-timer.C:
		return nil
	}
}
