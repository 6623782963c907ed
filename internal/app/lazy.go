package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LazyOpenTimeout bounds one shared open attempt
var LazyOpenTimeout = 30 * time.Second

// Lazy holds a process-wide resource that is opened on first use.
// Concurrent first callers share one open attempt; a failed attempt is not
// cached, so the next caller tries again.
type Lazy[T any] struct {
	open  func(ctx context.Context) (T, error)
	group singleflight.Group

	mu    sync.RWMutex
	value T
	ready bool
}

func NewLazy[T any](open func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{open: open}
}

// Get returns the resource, opening it if needed. The shared open is detached
// from ctx, so one cancelled caller does not fail the others; ctx only bounds
// how long this caller waits.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if v, ok := l.Peek(); ok {
		return v, nil
	}

	ch := l.group.DoChan("open", func() (interface{}, error) {
		if v, ok := l.Peek(); ok {
			return v, nil
		}
		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LazyOpenTimeout)
		defer cancel()
		v, err := l.open(openCtx)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.value = v
		l.ready = true
		l.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Peek returns the resource only when it is already open
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.ready
}
