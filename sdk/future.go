package sdk

import (
	"context"
	"sync"
)

// Future is the pending result of an asynchronous execution. It completes
// exactly once, with either a value or an error, and can be awaited any
// number of times from any goroutine.
//
// Example:
//
//	f := sdk.Execute(ctx, client, search)
//	// ... do other work ...
//	res, err := f.Await(ctx)
type Future[T any] struct {
	once   sync.Once
	done   chan struct{}
	value  T
	err    error
	cancel context.CancelFunc
}

func newFuture[T any](cancel context.CancelFunc) *Future[T] {
	return &Future[T]{done: make(chan struct{}), cancel: cancel}
}

// Completed returns a future that already holds v.
func Completed[T any](v T) *Future[T] {
	f := newFuture[T](nil)
	f.complete(v, nil)
	return f
}

// Failed returns a future that already holds err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T](nil)
	var zero T
	f.complete(zero, err)
	return f
}

// complete stores the outcome. Only the first call has an effect; it
// reports whether it was that call.
func (f *Future[T]) complete(v T, err error) bool {
	won := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		won = true
		close(f.done)
	})
	return won
}

// Done returns a channel that is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the future completes or ctx is done. A done ctx only
// stops the waiting; use Cancel to abort the request itself.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, transportError("await", ctx.Err())
	}
}

// Ready reports whether the future has completed.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Cancel aborts the underlying request. If the future has not completed
// yet it completes with an error matching ErrContextCanceled.
func (f *Future[T]) Cancel() {
	if f.cancel != nil {
		f.cancel()
	}
	var zero T
	f.complete(zero, NewError(ErrorTypeCanceled, "request canceled by caller", context.Canceled))
}
