package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"genaid/internal/lane"
	"genaid/internal/session"
)

type stubSession struct{ closed bool }

func (s *stubSession) Generate(ctx context.Context, prompt string) (string, error) { return "", nil }
func (s *stubSession) Close() error                                                { s.closed = true; return nil }

func TestShutdownReleasesSessionAfterDrain(t *testing.T) {
	sess := &stubSession{}
	mgr := session.NewManager(session.ManagerConfig{Engine: session.EngineFunc(func(string, session.Options) (session.Session, error) {
		return sess, nil
	})})
	if err := mgr.Initialize(context.Background(), "/m.bin"); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	worker := lane.New(lane.Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	shutdown(ctx, zerolog.Nop(), &http.Server{}, worker, mgr)
	if !sess.closed {
		t.Fatalf("session not released after a complete drain")
	}
	if mgr.Ready() {
		t.Fatalf("manager still ready after shutdown")
	}
}

func TestShutdownReleasesSessionBuiltAfterDrainTimeout(t *testing.T) {
	release := make(chan struct{})
	sess := &stubSession{}
	mgr := session.NewManager(session.ManagerConfig{Engine: session.EngineFunc(func(string, session.Options) (session.Session, error) {
		<-release
		return sess, nil
	})})
	worker := lane.New(lane.Config{})
	started := make(chan struct{})
	f, err := lane.Submit(worker, "initModel", func(ctx context.Context) (struct{}, error) {
		close(started)
		return struct{}{}, mgr.Initialize(ctx, "/m.bin")
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	shutdown(ctx, zerolog.Nop(), &http.Server{}, worker, mgr)

	// The init finishes after shutdown gave up on the drain.
	close(release)
	_, err = f.Wait(context.Background())
	if !errors.Is(err, session.ErrClosedDuringInit) {
		t.Fatalf("init err=%v, want ErrClosedDuringInit", err)
	}
	if !sess.closed {
		t.Fatalf("session built after shutdown was not released")
	}
	if mgr.Ready() {
		t.Fatalf("manager ready after shutdown")
	}
}
