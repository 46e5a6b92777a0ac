package repo

import (
	"context"
	"sync"
	"time"
)

// Locker serializes work per key. The returned func releases the lock.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// LocalLocker is an in-process keyed mutex for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

// NewLocalLocker creates a LocalLocker that waits up to wait for a key.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		slots: make(map[string]chan struct{}),
		wait:  wait,
	}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Acquire takes the slot for key or fails with ErrLockBusy after the wait.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	release := func() func() {
		var once sync.Once
		return func() {
			once.Do(func() { <-ch })
		}
	}
	select {
	case ch <- struct{}{}:
		return release(), nil
	default:
	}
	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return release(), nil
	case <-timer.C:
		return nil, ErrLockBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NewLocker returns a Redis-backed locker when Redis is up, else a local one.
func NewLocker(ttl, wait time.Duration) Locker {
	if Redis != nil {
		return NewRedisLocker(Redis, ttl, wait)
	}
	return NewLocalLocker(wait)
}
