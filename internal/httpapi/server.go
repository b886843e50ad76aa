package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"genaid/internal/lane"
	"genaid/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	DownloadModel(req types.DownloadRequest) (*lane.Future[types.DownloadResponse], error)
	CheckModel(req types.CheckRequest) (types.CheckResponse, error)
	InitModel(req types.InitRequest) (*lane.Future[types.InitResponse], error)
	GenerateResponse(req types.GenerateRequest) (*lane.Future[types.GenerateResponse], error)
	ListModels() []types.CatalogModel
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the router. JSON routes get compression, metrics and request
// logging. The websocket call channel is mounted outside that group since
// upgrades need the raw ResponseWriter.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/bridge", newWSHandler(svc).ServeHTTP)

	r.Group(func(r chi.Router) {
		if corsEnabled {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: corsAllowedOrigins,
				AllowedMethods: defaultIfEmpty(corsAllowedMethods, []string{"GET", "POST", "OPTIONS"}),
				AllowedHeaders: defaultIfEmpty(corsAllowedHeaders, []string{"Content-Type", "X-Request-Id"}),
				MaxAge:         300,
			}))
		}
		r.Use(middleware.Compress(5))
		r.Use(MetricsMiddleware)
		r.Use(requestLogger)
		// Security headers
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Content-Type-Options", "nosniff")
				next.ServeHTTP(w, r)
			})
		})

		r.Route("/v1", func(r chi.Router) {
			r.Get("/models", handleListModels(svc))
			r.Post("/models/download", handleDownload(svc))
			r.Get("/models/check", handleCheck(svc))
			r.Post("/models/init", handleInit(svc))
			r.Post("/generate", handleGenerate(svc))
		})

		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Status())
		})

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})

		r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
			if svc.Ready() {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ready"))
				return
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not initialized"))
		})

		r.Get("/metrics", promhttp.Handler().ServeHTTP)

		MountSwagger(r)
	})

	return r
}

func defaultIfEmpty(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// handleListModels returns the model catalog with local presence.
//
// @Summary      List catalog models
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Router       /v1/models [get]
func handleListModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models := svc.ListModels()
		if models == nil {
			models = []types.CatalogModel{}
		}
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
	}
}

// handleDownload fetches a model file into the storage root.
//
// @Summary      Download a model file
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        body  body      types.DownloadRequest  true  "download request"
// @Success      200   {object}  types.DownloadResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      502   {object}  types.ErrorResponse
// @Router       /v1/models/download [post]
func handleDownload(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DownloadRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		f, err := svc.DownloadModel(req)
		await(w, r, f, err)
	}
}

// handleCheck reports whether a model file is present locally.
//
// @Summary      Check a model file
// @Tags         models
// @Produce      json
// @Param        fileName  query     string  true  "file name under the storage root"
// @Success      200       {object}  types.CheckResponse
// @Failure      400       {object}  types.ErrorResponse
// @Router       /v1/models/check [get]
func handleCheck(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.CheckModel(types.CheckRequest{FileName: r.URL.Query().Get("fileName")})
		if err != nil {
			writeCallError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// handleInit loads a model file into a new inference session.
//
// @Summary      Initialize the inference session
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      types.InitRequest  true  "init request"
// @Success      200   {object}  types.InitResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Failure      422   {object}  types.ErrorResponse
// @Router       /v1/models/init [post]
func handleInit(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.InitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		f, err := svc.InitModel(req)
		await(w, r, f, err)
	}
}

// handleGenerate runs a prompt against the Ready session.
//
// @Summary      Generate a response
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      types.GenerateRequest  true  "generate request"
// @Success      200   {object}  types.GenerateResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      409   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /v1/generate [post]
func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		f, err := svc.GenerateResponse(req)
		await(w, r, f, err)
	}
}

// decodeJSON enforces the content type and body limit and decodes into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Oversized bodies also land here; still 400 to avoid leaking the limit.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// await waits for a queued call and writes its result. Submission errors are
// written directly. If the client goes away the result is dropped; the work
// item still runs to completion on the lane.
func await[T any](w http.ResponseWriter, r *http.Request, f *lane.Future[T], err error) {
	if err != nil {
		writeCallError(w, err)
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	v, err := f.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if serverBaseCtx.Err() != nil {
				writeJSONError(w, http.StatusServiceUnavailable, "server shutting down")
			}
			return
		}
		writeCallError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeCallError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		zlog.Warn().Err(err).Int("status", status).Msg("call failed")
	}
	writeJSONError(w, status, err.Error())
}
