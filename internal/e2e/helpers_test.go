package e2e

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"genaid/internal/artifact"
	"genaid/internal/bridge"
	"genaid/internal/httpapi"
	"genaid/internal/lane"
	"genaid/internal/registry"
	"genaid/internal/session"
)

// echoEngine loads any file starting with "GGUF" and answers prompts by
// echoing them back with the model file size.
type echoEngine struct{}

type echoSession struct{ size int64 }

func (echoEngine) Create(modelPath string, opts session.Options) (session.Session, error) {
	b, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(b, []byte("GGUF")) {
		return nil, errors.New("not a model file")
	}
	return &echoSession{size: int64(len(b))}, nil
}

func (s *echoSession) Generate(ctx context.Context, prompt string) (string, error) {
	return "echo: " + strings.ToUpper(prompt), nil
}

func (s *echoSession) Close() error { return nil }

type stack struct {
	srv      *httptest.Server
	upstream *httptest.Server
	root     string
}

// newStack wires the full service against a temp storage root and a local
// upstream that serves files from the given map.
func newStack(t *testing.T, files map[string]string) *stack {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(upstream.Close)

	root := t.TempDir()
	store, err := artifact.NewStore(artifact.StoreConfig{Root: root, Fetcher: artifact.NewHTTPFetcher(5 * time.Second)})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	catalog, err := registry.New([]registry.Entry{{ID: "tiny", FileName: "tiny.gguf", URL: upstream.URL + "/tiny.gguf"}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	sessions := session.NewManager(session.ManagerConfig{Engine: echoEngine{}})
	worker := lane.New(lane.Config{})
	b := bridge.New(bridge.Config{Store: store, Sessions: sessions, Lane: worker, Catalog: catalog})

	srv := httptest.NewServer(httpapi.NewMux(b))
	t.Cleanup(func() {
		srv.Close()
		_ = worker.Close(context.Background())
		_ = sessions.Close()
	})
	return &stack{srv: srv, upstream: upstream, root: root}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
