package bridge

import (
	"context"
	"strings"
	"time"

	"genaid/internal/artifact"
	"genaid/internal/events"
	"genaid/internal/lane"
	"genaid/internal/session"
	"genaid/pkg/types"
)

const (
	OpDownload = "downloadModel"
	OpCheck    = "checkModel"
	OpInit     = "initModel"
	OpGenerate = "generateResponse"
)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// submit queues task on the lane and instruments it. A closed lane is
// reported synchronously.
func submit[T any](b *Bridge, op string, task lane.Task[T]) (*lane.Future[T], error) {
	submitted := time.Now()
	f, err := lane.Submit(b.lane, op, func(ctx context.Context) (T, error) {
		v, err := task(ctx)
		observeDone(op, submitted, err)
		return v, err
	})
	if err != nil {
		observeCall(op, outcomeRejected)
		return nil, err
	}
	laneDepth.Set(float64(b.lane.Len()))
	f.Then(func(T, error) { laneDepth.Set(float64(b.lane.Len())) })
	b.log.Debug().Str("id", f.ID()).Str("op", op).Msg("call queued")
	return f, nil
}

func (b *Bridge) reject(op string, err error) error {
	observeCall(op, outcomeInvalid)
	b.log.Debug().Str("op", op).Err(err).Msg("call rejected")
	return err
}

// DownloadModel queues a download of req.URL into req.FileName. When req.ID
// names a catalog entry, its URL and file name fill the missing fields.
func (b *Bridge) DownloadModel(req types.DownloadRequest) (*lane.Future[types.DownloadResponse], error) {
	url, fileName := req.URL, req.FileName
	if !blank(req.ID) && (blank(url) || blank(fileName)) {
		e, ok := b.catalog.Lookup(req.ID)
		if !ok {
			return nil, b.reject(OpDownload, &ValidationError{Field: "id", Reason: "is not in the catalog"})
		}
		if blank(url) {
			url = e.URL
		}
		if blank(fileName) {
			fileName = e.FileName
		}
	}
	if blank(url) {
		return nil, b.reject(OpDownload, missing("url"))
	}
	if blank(fileName) {
		return nil, b.reject(OpDownload, missing("fileName"))
	}
	if err := artifact.ValidateFileName(fileName); err != nil {
		return nil, b.reject(OpDownload, &ValidationError{Field: "fileName", Reason: "must be a plain file name"})
	}
	return submit(b, OpDownload, func(ctx context.Context) (types.DownloadResponse, error) {
		p, status, err := b.store.Download(ctx, url, fileName)
		if err != nil {
			return types.DownloadResponse{}, &DownloadError{FileName: fileName, Err: err}
		}
		return types.DownloadResponse{Path: p, Status: string(status)}, nil
	})
}

// CheckModel reports local presence of req.FileName. It is answered inline
// and never queued.
func (b *Bridge) CheckModel(req types.CheckRequest) (types.CheckResponse, error) {
	if blank(req.FileName) {
		return types.CheckResponse{}, b.reject(OpCheck, missing("fileName"))
	}
	if err := artifact.ValidateFileName(req.FileName); err != nil {
		return types.CheckResponse{}, b.reject(OpCheck, &ValidationError{Field: "fileName", Reason: "must be a plain file name"})
	}
	observeCall(OpCheck, outcomeOK)
	ok, p := b.store.Exists(req.FileName)
	if !ok {
		return types.CheckResponse{Exists: false}, nil
	}
	return types.CheckResponse{Exists: true, Path: p}, nil
}

// InitModel queues construction of a session from req.Path, replacing any
// current session.
func (b *Bridge) InitModel(req types.InitRequest) (*lane.Future[types.InitResponse], error) {
	if blank(req.Path) {
		return nil, b.reject(OpInit, missing("path"))
	}
	path := req.Path
	return submit(b, OpInit, func(ctx context.Context) (types.InitResponse, error) {
		if err := b.sessions.Initialize(ctx, path); err != nil {
			return types.InitResponse{}, err
		}
		return types.InitResponse{}, nil
	})
}

// GenerateResponse queues req.Prompt against the Ready session. With no
// Ready session the call is rejected immediately and nothing is queued. While
// a Ready session is being replaced the call is queued behind the
// replacement and runs against the new session.
func (b *Bridge) GenerateResponse(req types.GenerateRequest) (*lane.Future[types.GenerateResponse], error) {
	if blank(req.Prompt) {
		return nil, b.reject(OpGenerate, missing("prompt"))
	}
	if !b.sessions.Accepting() {
		return nil, b.reject(OpGenerate, session.ErrNotInitialized)
	}
	prompt := req.Prompt
	return submit(b, OpGenerate, func(ctx context.Context) (types.GenerateResponse, error) {
		out, err := b.sessions.Generate(ctx, prompt)
		if err != nil {
			return types.GenerateResponse{}, err
		}
		b.publisher.Publish(events.Event{Name: "generate_done", Model: b.sessions.Snapshot().ModelPath, Fields: map[string]any{"chars": len(out)}})
		return types.GenerateResponse{Response: out}, nil
	})
}
