package session

// State is the lifecycle state of the session.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// Options are the generation options fixed at session construction.
type Options struct {
	MaxTokens   int     `json:"max_tokens"`
	TopK        int     `json:"top_k"`
	Temperature float32 `json:"temperature"`
	RandomSeed  int     `json:"random_seed"`
}

// DefaultOptions returns the fixed generation contract.
func DefaultOptions() Options {
	return Options{
		MaxTokens:   1024,
		TopK:        40,
		Temperature: 0.8,
		RandomSeed:  101,
	}
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State     State
	ModelPath string
	// Reason is set when State is StateFailed.
	Reason  string
	Options Options
	// Loads counts successful initializations.
	Loads uint64
}
