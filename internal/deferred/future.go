// Package deferred provides a small future type used to model simulated
// backend latency. A caller that no longer wants the value abandons the
// future, and any late result is dropped instead of being applied.
package deferred

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrAbandoned = errors.New("future abandoned")

type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	resolved  bool
	value     T
	err       error
	timer     *time.Timer
	callbacks []func(T)
	abandoned atomic.Bool
}

// After runs fn once d has elapsed and resolves the future with its result.
// A non-positive d resolves synchronously.
func After[T any](d time.Duration, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	if d <= 0 {
		f.resolve(fn())
		return f
	}

	f.mu.Lock()
	f.timer = time.AfterFunc(d, func() {
		if f.abandoned.Load() {
			var zero T
			f.resolve(zero, ErrAbandoned)
			return
		}
		f.resolve(fn())
	})
	f.mu.Unlock()
	return f
}

func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.resolve(v, nil)
	return f
}

func (f *Future[T]) resolve(v T, err error) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.value, f.err = v, err
	close(f.done)
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	if err != nil {
		return
	}
	for _, cb := range callbacks {
		if f.abandoned.Load() {
			return
		}
		cb(v)
	}
}

// Await blocks until the value is available or ctx is done. A cancelled ctx
// abandons the future.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		f.Abandon()
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers apply to receive the value. apply is skipped when the
// future is abandoned before the value arrives or resolves with an error.
func (f *Future[T]) Then(apply func(T)) {
	f.mu.Lock()
	if f.abandoned.Load() {
		f.mu.Unlock()
		return
	}
	if f.resolved {
		v, err := f.value, f.err
		f.mu.Unlock()
		if err == nil {
			apply(v)
		}
		return
	}
	f.callbacks = append(f.callbacks, apply)
	f.mu.Unlock()
}

// Abandon marks the future dead. Pending callbacks are discarded and a timer
// that has not fired yet is stopped.
func (f *Future[T]) Abandon() {
	f.abandoned.Store(true)

	f.mu.Lock()
	f.callbacks = nil
	stopped := f.timer != nil && f.timer.Stop()
	f.mu.Unlock()

	if stopped {
		var zero T
		f.resolve(zero, ErrAbandoned)
	}
}

// Live reports whether the future has not been abandoned.
func (f *Future[T]) Live() bool {
	return !f.abandoned.Load()
}
