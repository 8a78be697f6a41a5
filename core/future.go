package core

import (
	"context"
	"sync"
)

// Executor accepts fire-and-forget actions. Every scope scheduler satisfies it.
type Executor interface {
	Execute(action Action)
}

// Future is a single-assignment result. The zero value is not usable; create
// futures with NewFuture.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	mu    sync.Mutex
	value T
	thens []func(T)
}

// NewFuture returns an incomplete future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Complete sets the value and runs registered continuations on the calling
// goroutine. It reports whether this call completed the future; later calls
// are ignored.
func (f *Future[T]) Complete(value T) bool {
	var thens []func(T)
	completed := false

	f.once.Do(func() {
		f.mu.Lock()
		f.value = value
		thens = f.thens
		f.thens = nil
		close(f.done)
		f.mu.Unlock()
		completed = true
	})

	for _, fn := range thens {
		fn(value)
	}
	return completed
}

// Done is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone reports whether the future has completed.
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Value returns the value and true if the future has completed.
func (f *Future[T]) Value() (T, bool) {
	if !f.IsDone() {
		var zero T
		return zero, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, true
}

// Await blocks until the future completes or ctx is done.
//
// Do not await on a host thread a future that the same thread must complete.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		v, _ := f.Value()
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers fn to run with the value. It runs on the completing
// goroutine, or immediately on the caller if the future is already complete.
func (f *Future[T]) Then(fn func(T)) {
	f.mu.Lock()
	select {
	case <-f.done:
		v := f.value
		f.mu.Unlock()
		fn(v)
		return
	default:
	}
	f.thens = append(f.thens, fn)
	f.mu.Unlock()
}

// ThenOn is like Then but hops the continuation onto executor, so it runs in
// that scope instead of on the completing goroutine.
func (f *Future[T]) ThenOn(executor Executor, fn func(ctx context.Context, value T)) {
	f.Then(func(v T) {
		executor.Execute(func(ctx context.Context) {
			fn(ctx, v)
		})
	})
}
