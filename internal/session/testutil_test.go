package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// fakeEngine is a lightweight in-memory engine used for tests.
type fakeEngine struct {
	mu        sync.Mutex
	createErr error
	panicOn   string
	genErr    error
	created   []string
	sessions  []*fakeSession
	// block, when set, holds Create until closed.
	block chan struct{}
	// entered is signaled when Create starts, if set.
	entered chan struct{}
	// live counts sessions created and not yet closed.
	live int32
	peak int32
}

func (f *fakeEngine) Create(modelPath string, opts Options) (Session, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.panicOn != "" && f.panicOn == modelPath {
		panic("native construction crash")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, modelPath)
	if f.createErr != nil {
		return nil, f.createErr
	}
	n := atomic.AddInt32(&f.live, 1)
	if n > atomic.LoadInt32(&f.peak) {
		atomic.StoreInt32(&f.peak, n)
	}
	s := &fakeSession{engine: f, path: modelPath, opts: opts}
	f.sessions = append(f.sessions, s)
	return s, nil
}

type fakeSession struct {
	engine  *fakeEngine
	path    string
	opts    Options
	closed  atomic.Bool
	prompts []string
}

func (s *fakeSession) Generate(ctx context.Context, prompt string) (string, error) {
	if s.closed.Load() {
		return "", errors.New("session used after close")
	}
	if s.engine.genErr != nil {
		return "", s.engine.genErr
	}
	s.prompts = append(s.prompts, prompt)
	return s.path + ":" + prompt, nil
}

func (s *fakeSession) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		atomic.AddInt32(&s.engine.live, -1)
	}
	return nil
}
