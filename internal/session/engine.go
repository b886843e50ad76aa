package session

import "context"

// Engine abstracts the native inference runtime.
type Engine interface {
	// Create constructs a session bound to the model file at modelPath.
	Create(modelPath string, opts Options) (Session, error)
}

// Session is a stateful handle to a loaded model. It is not safe for
// concurrent use; the Manager never calls it from two goroutines at once.
type Session interface {
	// Generate returns the full completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// Close releases native resources.
	Close() error
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(modelPath string, opts Options) (Session, error)

func (f EngineFunc) Create(modelPath string, opts Options) (Session, error) { return f(modelPath, opts) }
