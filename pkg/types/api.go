package types

import "encoding/json"

// DownloadRequest is the downloadModel payload. Either URL and FileName, or a
// catalog ID, must be given; explicit fields win over the catalog.
type DownloadRequest struct {
	// Source URL of the model file.
	URL string `json:"url" example:"https://example.com/gemma_2b_en.bin"`
	// Target file name under the storage root.
	// example: gemma.bin
	FileName string `json:"fileName" example:"gemma.bin"`
	// Optional catalog id supplying url and fileName.
	// example: tiny-garden-270m
	ID string `json:"id,omitempty" example:"tiny-garden-270m"`
}

// DownloadResponse reports where the file lives and whether it was fetched.
type DownloadResponse struct {
	// Absolute local path.
	Path string `json:"path" example:"/home/user/.genaid/models/gemma.bin"`
	// "exists" or "downloaded".
	// example: downloaded
	Status string `json:"status" example:"downloaded"`
}

// CheckRequest is the checkModel payload.
type CheckRequest struct {
	// example: gemma.bin
	FileName string `json:"fileName" example:"gemma.bin"`
}

// CheckResponse reports local presence. Path is set only when present.
type CheckResponse struct {
	// example: true
	Exists bool   `json:"exists" example:"true"`
	Path   string `json:"path,omitempty"`
}

// InitRequest is the initModel payload.
type InitRequest struct {
	// Absolute path to a model file.
	Path string `json:"path" example:"/home/user/.genaid/models/gemma.bin"`
}

// InitResponse is the empty success payload of initModel.
type InitResponse struct{}

// GenerateRequest is the generateResponse payload.
type GenerateRequest struct {
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
}

// GenerateResponse carries the full completion text.
type GenerateResponse struct {
	Response string `json:"response"`
}

// ModelsResponse wraps the catalog returned by GET /v1/models.
type ModelsResponse struct {
	Models []CatalogModel `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: fileName is required
	Error string `json:"error" example:"fileName is required"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Session state: uninitialized, initializing, ready or failed.
	// example: ready
	State string `json:"state" example:"ready"`
	// Model path of the Ready session.
	ModelPath string `json:"modelPath,omitempty"`
	// Failure reason when state is failed.
	LastError string `json:"lastError,omitempty"`
	// Fixed generation options.
	Options GenerationOptions `json:"options"`
	// Queued plus running work items.
	// example: 0
	QueueDepth int `json:"queueDepth" example:"0"`
	// Operation currently running on the worker lane, if any.
	Running string `json:"running,omitempty"`
	// Successful initializations since start.
	// example: 1
	LoadsTotal uint64 `json:"loadsTotal" example:"1"`
	// Whether the in-process llama engine is compiled in.
	LlamaBuilt bool `json:"llamaBuilt"`
	// Absolute storage root.
	StorageDir string `json:"storageDir"`
	// Model files present in the storage root, sorted by name.
	StoredFiles []StoredFile `json:"storedFiles"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptimeSeconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"serverTimeUnix" example:"1700000000"`
}

// BridgeCall is one inbound message on the websocket call channel.
type BridgeCall struct {
	// Caller-chosen correlation id echoed in the reply.
	ID string `json:"id"`
	// downloadModel, checkModel, initModel, generateResponse or listModels.
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// BridgeReply answers one BridgeCall. Exactly one of Result or Error is set.
type BridgeReply struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   int    `json:"code,omitempty"`
}
