package common

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Future is a settle-once result of an asynchronous operation. It is resolved with a value or rejected with an error
// exactly once; later attempts to settle it are ignored.
//
// Futures cannot be cancelled. A future nobody waits on is harmless: it settles and is collected.
type Future[T any] struct {
	mu        *sync.Mutex
	done      chan struct{}
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// NewFuture creates a pending Future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{
		mu:   &sync.Mutex{},
		done: make(chan struct{}),
	}
}

// Resolved creates a Future already resolved with v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Rejected creates a Future already rejected with err.
func Rejected[T any](err error) *Future[T] {
	f := NewFuture[T]()
	f.Reject(err)
	return f
}

// Resolve settles the future with v.
//
// Parameters:
//   - v: the result value
//
// Returns:
//   - bool: false if the future had already settled
func (f *Future[T]) Resolve(v T) bool {
	return f.settle(v, nil)
}

// Reject settles the future with err. A nil err is treated as a resolution with the zero value.
//
// Parameters:
//   - err: the failure
//
// Returns:
//   - bool: false if the future had already settled
func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(v T, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.value = v
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(v, err)
	}
	return true
}

// Done returns a channel that is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has been resolved or rejected.
func (f *Future[T]) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Result returns the settled value and error without blocking. Before the future settles it returns the zero value
// and a nil error, so callers should check Settled or Done first.
func (f *Future[T]) Result() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Wait blocks until the future settles or ctx is done.
//
// Parameters:
//   - ctx: bounds the wait; cancelling it does not cancel the underlying operation
//
// Returns:
//   - T: the resolved value
//   - error: the rejection error, or ctx.Err() if the wait was abandoned
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then registers fn to run once the future settles. If it already has, fn runs immediately on the calling goroutine;
// otherwise it runs on the goroutine that settles the future.
func (f *Future[T]) Then(fn func(T, error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()
	fn(v, err)
}

// Transform returns a future that settles with fn applied to the resolved value of f.
// A rejection of f is passed through unchanged and fn is not called.
func Transform[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := NewFuture[U]()
	f.Then(func(v T, err error) {
		if err != nil {
			out.Reject(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(u)
	})
	return out
}

// JoinAll returns a future that resolves once every input future has resolved, or rejects with the first rejection.
// When every input has already settled, the joined future is settled before JoinAll returns.
//
// Parameters:
//   - ctx: bounds the join; when it is done the joined future rejects with ctx.Err()
//   - futures: the futures to join
//
// Returns:
//   - *Future[struct{}]: the joined future
func JoinAll[T any](ctx context.Context, futures ...*Future[T]) *Future[struct{}] {
	if len(futures) == 0 {
		return Resolved(struct{}{})
	}

	out := NewFuture[struct{}]()
	if allSettled(futures) {
		for _, f := range futures {
			if _, err := f.Result(); err != nil {
				out.Reject(err)
				return out
			}
		}
		out.Resolve(struct{}{})
		return out
	}

	go func() {
		g, gctx := errgroup.WithContext(ctx)
		for _, f := range futures {
			g.Go(func() error {
				_, err := f.Wait(gctx)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(struct{}{})
	}()
	return out
}

func allSettled[T any](futures []*Future[T]) bool {
	for _, f := range futures {
		if !f.Settled() {
			return false
		}
	}
	return true
}

// SettleAll returns a future that resolves once every input future has settled, regardless of outcome.
func SettleAll[T any](futures ...*Future[T]) *Future[struct{}] {
	out := NewFuture[struct{}]()
	if len(futures) == 0 {
		out.Resolve(struct{}{})
		return out
	}

	var mu sync.Mutex
	remaining := len(futures)
	for _, f := range futures {
		f.Then(func(T, error) {
			mu.Lock()
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				out.Resolve(struct{}{})
			}
		})
	}
	return out
}
