package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryLockerExcludes(t *testing.T) {
	locker := NewMemoryLocker()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "listing", time.Second)
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("max holders = %d, want 1", maxInside)
	}
}

func TestMemoryLockerHonoursContext(t *testing.T) {
	locker := NewMemoryLocker()
	release, err := locker.Acquire(context.Background(), "listing", time.Minute)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if _, err := locker.Acquire(ctx, "listing", time.Minute); !errors.Is(err, ErrNotAcquired) {
		t.Fatalf("Acquire() error = %v, want ErrNotAcquired", err)
	}
}

func TestMemoryLockerExpiredReleaseIsNoop(t *testing.T) {
	l := NewMemoryLocker().(*memoryLocker)
	now := time.Now()
	l.clock = func() time.Time { return now }

	stale, err := l.Acquire(context.Background(), "listing", time.Second)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	now = now.Add(2 * time.Second)
	fresh, err := l.Acquire(context.Background(), "listing", time.Second)
	if err != nil {
		t.Fatalf("Acquire() after expiry error = %v", err)
	}

	stale()
	if _, ok := l.tryAcquire("listing", time.Second); ok {
		t.Fatal("stale release dropped the fresh holder")
	}
	fresh()
}
