package lane

import (
	"context"
	"sync"
)

// Future is the completion handle of one submitted task.
type Future[T any] struct {
	id   string
	op   string
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any](id, op string) *Future[T] {
	return &Future[T]{id: id, op: op, done: make(chan struct{})}
}

// ID returns the work item id assigned at submission.
func (f *Future[T]) ID() string { return f.id }

// Op returns the operation name given at submission.
func (f *Future[T]) Op() string { return f.op }

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the task completes or ctx is done. Giving up on the wait
// does not cancel the task; it still runs to completion on the lane.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while the task is
// still queued or running.
func (f *Future[T]) Result() (val T, err error, ok bool) {
	select {
	case <-f.done:
		return f.val, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Then invokes fn with the outcome once it is available. fn runs on its own
// goroutine, never on the lane worker.
func (f *Future[T]) Then(fn func(T, error)) {
	go func() {
		<-f.done
		fn(f.val, f.err)
	}()
}

// complete stores the outcome. Only the first call has any effect.
func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// Completed returns a Future that already holds v and err. It is useful for
// answers that never need the lane, and for tests.
func Completed[T any](v T, err error) *Future[T] {
	f := newFuture[T]("", "")
	f.complete(v, err)
	return f
}
