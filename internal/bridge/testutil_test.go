package bridge

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"genaid/internal/artifact"
	"genaid/internal/events"
	"genaid/internal/lane"
	"genaid/internal/registry"
	"genaid/internal/session"
)

// recorder keeps a global ordering of engine activity.
type recorder struct {
	mu  sync.Mutex
	log []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.log = append(r.log, s)
	r.mu.Unlock()
}

func (r *recorder) entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.log...)
}

// fakeEngine builds sessions that echo their model path.
type fakeEngine struct {
	rec       *recorder
	createErr error
	initDelay time.Duration
	calls     int32
	genCalls  int32
}

func (f *fakeEngine) Create(modelPath string, opts session.Options) (session.Session, error) {
	atomic.AddInt32(&f.calls, 1)
	f.rec.add("create-start:" + modelPath)
	if f.initDelay > 0 {
		time.Sleep(f.initDelay)
	}
	defer f.rec.add("create-end:" + modelPath)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &fakeSession{engine: f, path: modelPath}, nil
}

type fakeSession struct {
	engine *fakeEngine
	path   string
}

func (s *fakeSession) Generate(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&s.engine.genCalls, 1)
	s.engine.rec.add("generate:" + s.path)
	if prompt == "fail" {
		return "", errors.New("decoder exploded")
	}
	return s.path + " says " + prompt, nil
}

func (s *fakeSession) Close() error {
	s.engine.rec.add("close:" + s.path)
	return nil
}

type harness struct {
	bridge *Bridge
	engine *fakeEngine
	rec    *recorder
	store  *artifact.Store
	events *events.Memory
	srvURL string
	hits   *int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "model-bytes")
	}))
	t.Cleanup(srv.Close)

	pub := events.NewMemory()
	store, err := artifact.NewStore(artifact.StoreConfig{Root: t.TempDir(), Publisher: pub})
	require.NoError(t, err)
	rec := &recorder{}
	eng := &fakeEngine{rec: rec}
	mgr := session.NewManager(session.ManagerConfig{Engine: eng, Publisher: pub})
	l := lane.New(lane.Config{})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = l.Close(ctx)
	})
	cat, err := registry.New([]registry.Entry{{ID: "tiny", FileName: "tiny.bin", URL: srv.URL + "/tiny"}})
	require.NoError(t, err)
	b := New(Config{Store: store, Sessions: mgr, Lane: l, Catalog: cat, Publisher: pub})
	return &harness{bridge: b, engine: eng, rec: rec, store: store, events: pub, srvURL: srv.URL, hits: &hits}
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

// await waits for f and fails the test on timeout.
func await[T any](t *testing.T, f *lane.Future[T]) (T, error) {
	t.Helper()
	require.NotNil(t, f)
	v, err := f.Wait(testCtx(t))
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("future %s (%s) did not complete", f.ID(), f.Op())
	}
	return v, err
}
