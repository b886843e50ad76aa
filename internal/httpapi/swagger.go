//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"
	httpSwagger "github.com/swaggo/http-swagger"
)

// openAPIDoc is the document served when built with -tags=swagger. It is
// replaced by `swag init` output when generated docs are available.
type openAPIDoc struct{}

func (openAPIDoc) ReadDoc() string {
	return `{
  "swagger": "2.0",
  "info": {"title": "genaid API", "version": "1.0", "description": "Local model storage, session and generation bridge."},
  "basePath": "/",
  "paths": {
    "/v1/models": {"get": {"summary": "List catalog models", "tags": ["models"]}},
    "/v1/models/download": {"post": {"summary": "Download a model file", "tags": ["models"]}},
    "/v1/models/check": {"get": {"summary": "Check a model file", "tags": ["models"]}},
    "/v1/models/init": {"post": {"summary": "Initialize the inference session", "tags": ["session"]}},
    "/v1/generate": {"post": {"summary": "Generate a response", "tags": ["session"]}}
  }
}`
}

func init() {
	swag.Register(swag.Name, openAPIDoc{})
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
