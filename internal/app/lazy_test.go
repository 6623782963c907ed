package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyConcurrentCallersShareOneOpen(t *testing.T) {
	var opens int32
	l := NewLazy(func(ctx context.Context) (string, error) {
		atomic.AddInt32(&opens, 1)
		time.Sleep(20 * time.Millisecond)
		return "handle", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "handle", v)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&opens))

	_, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&opens))
}

func TestLazyRetriesAfterFailure(t *testing.T) {
	var calls int32
	l := NewLazy(func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return 0, errors.New("connection refused")
		}
		return 42, nil
	})

	_, err := l.Get(context.Background())
	require.Error(t, err)
	_, ok := l.Peek()
	assert.False(t, ok)

	v, err := l.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestLazyCancelledCallerDoesNotFailOthers(t *testing.T) {
	release := make(chan struct{})
	l := NewLazy(func(ctx context.Context) (string, error) {
		select {
		case <-release:
			return "handle", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Get(first)
		firstErr <- err
	}()

	second := make(chan string, 1)
	go func() {
		v, err := l.Get(context.Background())
		assert.NoError(t, err)
		second <- v
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	select {
	case v := <-second:
		assert.Equal(t, "handle", v)
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never received the handle")
	}
	_, ok := l.Peek()
	assert.True(t, ok)
}
