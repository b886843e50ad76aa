package lane

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Task is a unit of work executed on the lane worker.
type Task[T any] func(ctx context.Context) (T, error)

type item struct {
	id       string
	op       string
	enqueued time.Time
	run      func(ctx context.Context)
}

// Lane runs submitted tasks one at a time in FIFO order on a single worker
// goroutine. Submit never blocks on queued work.
type Lane struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*item
	running string
	busy    bool
	closed  bool
	done    chan struct{}
	baseCtx context.Context
	log     zerolog.Logger
}

// Config tunes a Lane. The zero value is usable.
type Config struct {
	// Logger receives task lifecycle lines at debug level and panics at error level.
	Logger *zerolog.Logger
}

// New starts a Lane and its worker goroutine.
func New(cfg Config) *Lane {
	l := &Lane{
		done:    make(chan struct{}),
		baseCtx: context.Background(),
		log:     zerolog.Nop(),
	}
	if cfg.Logger != nil {
		l.log = cfg.Logger.With().Str("component", "lane").Logger()
	}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Submit enqueues task under the operation name op. The returned Future is
// completed on the worker once the task has run. After Close, Submit returns
// ErrClosed and enqueues nothing.
func Submit[T any](l *Lane, op string, task Task[T]) (*Future[T], error) {
	f := newFuture[T](uuid.NewString(), op)
	it := &item{
		id:       f.id,
		op:       op,
		enqueued: time.Now(),
	}
	it.run = func(ctx context.Context) {
		v, err := protect(ctx, op, task)
		if pe, ok := err.(*PanicError); ok {
			l.log.Error().Str("event", "task_panic").Str("id", f.id).Str("op", op).Interface("panic", pe.Value).Msg("task recovered")
		}
		f.complete(v, err)
	}
	if err := l.enqueue(it); err != nil {
		return nil, err
	}
	return f, nil
}

// protect runs task and converts a panic into a *PanicError.
func protect[T any](ctx context.Context, op string, task Task[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = &PanicError{Op: op, Value: r, Stack: debug.Stack()}
		}
	}()
	return task(ctx)
}

func (l *Lane) enqueue(it *item) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.queue = append(l.queue, it)
	l.cond.Signal()
	return nil
}

func (l *Lane) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		it := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.running = it.op
		l.busy = true
		l.mu.Unlock()

		start := time.Now()
		l.log.Debug().Str("id", it.id).Str("op", it.op).Dur("queued", start.Sub(it.enqueued)).Msg("task start")
		l.exec(it)
		l.log.Debug().Str("id", it.id).Str("op", it.op).Dur("dur", time.Since(start)).Msg("task done")

		l.mu.Lock()
		l.running = ""
		l.busy = false
		l.mu.Unlock()
	}
}

// exec runs one item. protect already recovers task panics; this guards the
// worker against anything escaping the completion path itself.
func (l *Lane) exec(it *item) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Str("id", it.id).Str("op", it.op).Interface("panic", r).Msg("task_panic")
		}
	}()
	it.run(l.baseCtx)
}

// Len reports queued items plus the one currently running.
func (l *Lane) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.queue)
	if l.busy {
		n++
	}
	return n
}

// Running returns the operation name of the task in progress, or "".
func (l *Lane) Running() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Close stops accepting work and waits for queued tasks to finish or ctx to
// end. Close is safe to call more than once.
func (l *Lane) Close(ctx context.Context) error {
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
