package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"genaid/internal/lane"
	"genaid/internal/session"
	"genaid/pkg/types"
)

func dialBridge(t *testing.T, svc Service) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(NewMux(svc))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/bridge"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

type wireReply struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
	Code   int             `json:"code"`
}

func call(t *testing.T, conn *websocket.Conn, id, method string, params any) {
	t.Helper()
	msg := map[string]any{"id": id, "method": method}
	if params != nil {
		msg["params"] = params
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func read(t *testing.T, conn *websocket.Conn) wireReply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var r wireReply
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func TestBridge_CheckModel(t *testing.T) {
	svc := &mockService{check: types.CheckResponse{Exists: true, Path: "/m/a.bin"}}
	conn := dialBridge(t, svc)

	call(t, conn, "1", methodCheck, types.CheckRequest{FileName: "a.bin"})
	r := read(t, conn)
	require.Equal(t, "1", r.ID)
	require.Empty(t, r.Error)
	var res types.CheckResponse
	require.NoError(t, json.Unmarshal(r.Result, &res))
	require.True(t, res.Exists)
	require.Equal(t, "/m/a.bin", res.Path)
}

func TestBridge_InitReplyIsEmptyObject(t *testing.T) {
	conn := dialBridge(t, &mockService{})
	call(t, conn, "init-1", methodInit, types.InitRequest{Path: "/m/a.bin"})
	r := read(t, conn)
	require.Equal(t, "init-1", r.ID)
	require.JSONEq(t, `{}`, string(r.Result))
}

func TestBridge_ErrorCarriesCode(t *testing.T) {
	conn := dialBridge(t, &mockService{callErr: session.ErrNotInitialized})
	call(t, conn, "g", methodGenerate, types.GenerateRequest{Prompt: "hi"})
	r := read(t, conn)
	require.Equal(t, "g", r.ID)
	require.Equal(t, session.ErrNotInitialized.Error(), r.Error)
	require.Equal(t, http.StatusConflict, r.Code)
}

func TestBridge_UnknownMethodAndBadJSON(t *testing.T) {
	conn := dialBridge(t, &mockService{})

	call(t, conn, "x", "rebootDevice", nil)
	r := read(t, conn)
	require.Equal(t, "x", r.ID)
	require.Equal(t, http.StatusNotFound, r.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":`)))
	r = read(t, conn)
	require.Equal(t, http.StatusBadRequest, r.Code)

	call(t, conn, "p", methodCheck, "not-an-object")
	r = read(t, conn)
	require.Equal(t, "p", r.ID)
	require.Equal(t, "invalid params", r.Error)
}

func TestBridge_ListModels(t *testing.T) {
	conn := dialBridge(t, &mockService{models: []types.CatalogModel{{ID: "tiny"}}})
	call(t, conn, "l", methodList, nil)
	r := read(t, conn)
	var res types.ModelsResponse
	require.NoError(t, json.Unmarshal(r.Result, &res))
	require.Len(t, res.Models, 1)
	require.Equal(t, "tiny", res.Models[0].ID)
}

// Inline calls are answered while a queued call is still running; the queued
// reply follows when its work item settles.
func TestBridge_QueuedReplyArrivesLater(t *testing.T) {
	l := lane.New(lane.Config{})
	defer l.Close(context.Background())
	release := make(chan struct{})
	f, err := lane.Submit(l, "generateResponse", func(context.Context) (types.GenerateResponse, error) {
		<-release
		return types.GenerateResponse{Response: "done"}, nil
	})
	require.NoError(t, err)

	svc := &mockService{pendingGen: f, check: types.CheckResponse{}}
	conn := dialBridge(t, svc)

	call(t, conn, "gen", methodGenerate, types.GenerateRequest{Prompt: "hi"})
	call(t, conn, "chk", methodCheck, types.CheckRequest{FileName: "a.bin"})
	r := read(t, conn)
	require.Equal(t, "chk", r.ID)

	close(release)
	r = read(t, conn)
	require.Equal(t, "gen", r.ID)
	var res types.GenerateResponse
	require.NoError(t, json.Unmarshal(r.Result, &res))
	require.Equal(t, "done", res.Response)
}

func TestCheckOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/bridge", nil)
	req.Host = "localhost:8080"
	require.True(t, checkOrigin(req))

	req.Header.Set("Origin", "http://localhost:8080")
	require.True(t, checkOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	require.False(t, checkOrigin(req))

	SetCORSOptions(true, []string{"http://evil.example"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	require.True(t, checkOrigin(req))
}
