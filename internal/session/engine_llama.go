//go:build llama

package session

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaEngine holds global config used to load a model.
type llamaEngine struct {
	ctxSize int
	threads int
}

// NewLlamaEngine returns the in-process go-llama.cpp engine.
func NewLlamaEngine(ctxSize, threads int) Engine {
	return &llamaEngine{ctxSize: ctxSize, threads: threads}
}

// llamaSession owns the loaded model.
type llamaSession struct {
	model   *llama.LLama
	threads int
	opts    Options
}

func (e *llamaEngine) Create(modelPath string, opts Options) (Session, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{}
	if e.ctxSize > 0 {
		mo = append(mo, llama.SetContext(e.ctxSize))
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaSession{model: m, threads: e.threads, opts: opts}, nil
}

func (s *llamaSession) Generate(ctx context.Context, prompt string) (string, error) {
	if s.model == nil {
		return "", errors.New("llama model not initialized")
	}
	text, err := s.model.Predict(prompt, predictOptions(s.opts, s.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (s *llamaSession) Close() error {
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

// predictOptions converts the fixed generation options into go-llama.cpp options.
func predictOptions(opts Options, threads int) []llama.PredictOption {
	if threads < 1 {
		threads = 1
	}
	return []llama.PredictOption{
		llama.SetTokens(opts.MaxTokens),
		llama.SetThreads(threads),
		llama.SetTopK(opts.TopK),
		llama.SetTemperature(opts.Temperature),
		llama.SetSeed(opts.RandomSeed),
	}
}
