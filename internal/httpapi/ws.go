package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"genaid/internal/lane"
	"genaid/pkg/types"
)

const (
	methodDownload = "downloadModel"
	methodCheck    = "checkModel"
	methodInit     = "initModel"
	methodGenerate = "generateResponse"
	methodList     = "listModels"

	wsWriteTimeout = 10 * time.Second
)

// wsHandler serves the websocket call channel. Each inbound call gets exactly
// one reply carrying the caller's id. Replies to queued calls are sent when
// their work item finishes, so they may arrive out of request order across
// methods but follow lane order among queued calls.
type wsHandler struct {
	svc      Service
	upgrader websocket.Upgrader
}

func newWSHandler(svc Service) *wsHandler {
	return &wsHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// checkOrigin accepts same-origin requests, and any origin listed in the CORS
// options when CORS is enabled.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if corsEnabled {
		for _, o := range corsAllowedOrigins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
	}
	return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://"), r.Host)
}

type wsConn struct {
	conn *websocket.Conn
	svc  Service
	log  zerolog.Logger

	wmu     sync.Mutex
	pending sync.WaitGroup
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zlog.Info().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := &wsConn{
		conn: conn,
		svc:  h.svc,
		log:  zlog.With().Str("conn", uuid.NewString()).Logger(),
	}
	wsConnections.Inc()
	c.log.Debug().Str("remote", r.RemoteAddr).Msg("bridge connected")
	c.readLoop()
	// Queued calls still finish on the lane; wait so their replies are
	// attempted before the socket goes away.
	c.pending.Wait()
	_ = conn.Close()
	wsConnections.Dec()
	c.log.Debug().Msg("bridge disconnected")
}

func (c *wsConn) readLoop() {
	c.conn.SetReadLimit(maxBodyBytes)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.Info().Err(err).Msg("bridge read failed")
			}
			return
		}
		var call types.BridgeCall
		if err := json.Unmarshal(msg, &call); err != nil {
			c.fail("", http.StatusBadRequest, "invalid JSON message")
			continue
		}
		c.dispatch(call)
	}
}

func (c *wsConn) dispatch(call types.BridgeCall) {
	switch call.Method {
	case methodDownload:
		var p types.DownloadRequest
		if c.params(call, &p) {
			f, err := c.svc.DownloadModel(p)
			follow(c, call.ID, f, err)
		}
	case methodCheck:
		var p types.CheckRequest
		if c.params(call, &p) {
			res, err := c.svc.CheckModel(p)
			c.finish(call.ID, res, err)
		}
	case methodInit:
		var p types.InitRequest
		if c.params(call, &p) {
			f, err := c.svc.InitModel(p)
			follow(c, call.ID, f, err)
		}
	case methodGenerate:
		var p types.GenerateRequest
		if c.params(call, &p) {
			f, err := c.svc.GenerateResponse(p)
			follow(c, call.ID, f, err)
		}
	case methodList:
		models := c.svc.ListModels()
		if models == nil {
			models = []types.CatalogModel{}
		}
		c.send(types.BridgeReply{ID: call.ID, Result: types.ModelsResponse{Models: models}})
	default:
		c.fail(call.ID, http.StatusNotFound, "unknown method: "+call.Method)
	}
}

// params decodes call params into v. Missing params decode as an empty
// object so the service reports the missing field by name.
func (c *wsConn) params(call types.BridgeCall, v any) bool {
	if len(call.Params) == 0 || string(call.Params) == "null" {
		return true
	}
	if err := json.Unmarshal(call.Params, v); err != nil {
		c.fail(call.ID, http.StatusBadRequest, "invalid params")
		return false
	}
	return true
}

// follow replies once f settles. Submission errors are replied immediately.
func follow[T any](c *wsConn, id string, f *lane.Future[T], err error) {
	if err != nil {
		c.finish(id, nil, err)
		return
	}
	c.pending.Add(1)
	f.Then(func(v T, err error) {
		defer c.pending.Done()
		c.finish(id, v, err)
	})
}

func (c *wsConn) finish(id string, v any, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			c.log.Warn().Err(err).Str("id", id).Int("status", status).Msg("call failed")
		}
		c.fail(id, status, err.Error())
		return
	}
	c.send(types.BridgeReply{ID: id, Result: v})
}

func (c *wsConn) fail(id string, code int, msg string) {
	c.send(types.BridgeReply{ID: id, Error: msg, Code: code})
}

// send serializes writes; gorilla connections allow one concurrent writer.
func (c *wsConn) send(reply types.BridgeReply) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := c.conn.WriteJSON(reply); err != nil {
		c.log.Debug().Err(err).Str("id", reply.ID).Msg("bridge write failed")
	}
}
