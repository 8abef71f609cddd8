package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrNotAcquired = errors.New("slot lock not acquired")

// Locker serializes the booking critical section per slot key so that
// two concurrent booking attempts cannot both pass the availability
// check. Keys are opaque; the scheduling service derives them from
// (provider, date, slot).
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// localLocker guards slots with in-process mutexes. Sufficient for a
// single-node deployment and for tests; multi-node deployments use the
// Redis locker instead.
type localLocker struct {
	mu    sync.Mutex
	slots map[string]*sync.Mutex
}

func NewLocal() Locker {
	return &localLocker{slots: make(map[string]*sync.Mutex)}
}

func (l *localLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.slots[key]
	if !ok {
		m = &sync.Mutex{}
		l.slots[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	return fn(ctx)
}
