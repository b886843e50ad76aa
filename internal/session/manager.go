package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"genaid/internal/events"
)

// Manager owns the lifecycle of at most one live Session.
type Manager struct {
	mu        sync.RWMutex
	engine    Engine
	opts      Options
	state     State
	reason    string
	path      string
	sess      Session
	loads     uint64
	// replacing is set while an Initialize is building a successor to a
	// session that was Ready when it started.
	replacing bool
	// epoch advances on Close so an Initialize that outlives it can tell.
	epoch     uint64
	publisher events.Publisher
	log       zerolog.Logger
}

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Engine Engine
	// Options defaults to DefaultOptions when zero.
	Options   Options
	Publisher events.Publisher
	Logger    *zerolog.Logger
}

// NewManager constructs a Manager in StateUninitialized.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		engine:    cfg.Engine,
		opts:      cfg.Options,
		state:     StateUninitialized,
		publisher: events.OrNop(cfg.Publisher),
		log:       zerolog.Nop(),
	}
	if m.opts == (Options{}) {
		m.opts = DefaultOptions()
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "session").Logger()
	}
	return m
}

// Initialize builds a new session from modelPath. Any existing session is
// released before the new one is constructed, so two sessions never coexist.
// On failure the manager is left in StateFailed with the failure reason.
func (m *Manager) Initialize(ctx context.Context, modelPath string) error {
	if strings.TrimSpace(modelPath) == "" {
		return &InitializationError{Path: modelPath, Err: errors.New("model path is empty")}
	}
	m.mu.Lock()
	if m.state == StateInitializing {
		m.mu.Unlock()
		return ErrAlreadyInitializing
	}
	prev, prevPath := m.sess, m.path
	m.state = StateInitializing
	m.replacing = prev != nil
	m.sess = nil
	m.path = ""
	m.reason = ""
	epoch := m.epoch
	m.mu.Unlock()

	startTs := time.Now()
	m.log.Info().Str("event", "init_start").Str("path", modelPath).Msg("session initialize")
	m.publisher.Publish(events.Event{Name: "init_start", Model: modelPath, Fields: map[string]any{}})

	if prev != nil {
		if err := m.release(prev); err != nil {
			m.log.Warn().Err(err).Str("path", prevPath).Msg("close previous session")
		}
		m.publisher.Publish(events.Event{Name: "session_released", Model: prevPath, Fields: map[string]any{}})
	}

	if err := ctx.Err(); err != nil {
		m.fail(epoch, modelPath, err)
		return &InitializationError{Path: modelPath, Err: err}
	}

	sess, err := m.create(modelPath)
	if err != nil {
		m.fail(epoch, modelPath, err)
		return &InitializationError{Path: modelPath, Err: err}
	}

	m.mu.Lock()
	if m.epoch != epoch {
		// Closed while constructing: nothing may own this session.
		m.mu.Unlock()
		if err := m.release(sess); err != nil {
			m.log.Warn().Err(err).Str("path", modelPath).Msg("close abandoned session")
		}
		m.log.Warn().Str("event", "init_abandoned").Str("path", modelPath).Msg("manager closed during initialize")
		m.publisher.Publish(events.Event{Name: "session_released", Model: modelPath, Fields: map[string]any{}})
		return &InitializationError{Path: modelPath, Err: ErrClosedDuringInit}
	}
	m.sess = sess
	m.path = modelPath
	m.state = StateReady
	m.replacing = false
	m.loads++
	m.mu.Unlock()
	m.log.Info().Str("event", "init_ready").Str("path", modelPath).Dur("dur", time.Since(startTs)).Msg("session ready")
	m.publisher.Publish(events.Event{Name: "init_ready", Model: modelPath, Fields: map[string]any{"dur_ms": int(time.Since(startTs) / time.Millisecond)}})
	return nil
}

func (m *Manager) fail(epoch uint64, modelPath string, err error) {
	m.mu.Lock()
	if m.epoch == epoch {
		m.state = StateFailed
		m.replacing = false
		m.reason = err.Error()
	}
	m.mu.Unlock()
	m.log.Error().Str("event", "init_failed").Str("path", modelPath).Err(err).Msg("session initialize failed")
	m.publisher.Publish(events.Event{Name: "init_failed", Model: modelPath, Fields: map[string]any{"error": err.Error()}})
}

// create calls the engine and converts a panic into an error.
func (m *Manager) create(modelPath string) (sess Session, err error) {
	if m.engine == nil {
		return nil, ErrDependencyUnavailable("no inference engine configured")
	}
	defer func() {
		if r := recover(); r != nil {
			sess, err = nil, panicError{v: r}
		}
	}()
	sess, err = m.engine.Create(modelPath, m.opts)
	if err == nil && sess == nil {
		err = errors.New("engine returned no session")
	}
	return sess, err
}

func (m *Manager) release(s Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{v: r}
		}
	}()
	return s.Close()
}

// Ready reports whether a session is Ready.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.sess != nil
}

// Accepting reports whether a generate call may be queued now: a session is
// Ready, or a Ready session is being replaced. Work queued behind the
// replacement runs against the new session, or fails with ErrNotInitialized
// if the replacement fails.
func (m *Manager) Accepting() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch m.state {
	case StateReady:
		return m.sess != nil
	case StateInitializing:
		return m.replacing
	default:
		return false
	}
}

// Generate runs prompt against the Ready session. The read lock is held for
// the duration so a concurrent Initialize cannot release the session mid-call.
func (m *Manager) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateReady || m.sess == nil {
		return "", ErrNotInitialized
	}
	startTs := time.Now()
	out, err := m.generate(ctx, m.sess, prompt)
	if err != nil {
		m.log.Error().Str("event", "generate_failed").Str("path", m.path).Err(err).Msg("generate")
		return "", &InferenceError{Err: err}
	}
	m.log.Debug().Str("event", "generate_done").Str("path", m.path).Int("chars", len(out)).Dur("dur", time.Since(startTs)).Msg("generate")
	return out, nil
}

func (m *Manager) generate(ctx context.Context, s Session, prompt string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", panicError{v: r}
		}
	}()
	return s.Generate(ctx, prompt)
}

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		State:     m.state,
		ModelPath: m.path,
		Reason:    m.reason,
		Options:   m.opts,
		Loads:     m.loads,
	}
}

// Options returns the fixed generation options.
func (m *Manager) Options() Options { return m.opts }

// Close releases the current session, if any, and returns to StateUninitialized.
// An Initialize still in progress releases its session instead of installing it.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.epoch++
	sess, path := m.sess, m.path
	m.sess = nil
	m.path = ""
	m.state = StateUninitialized
	m.replacing = false
	m.reason = ""
	m.mu.Unlock()
	if sess == nil {
		return nil
	}
	m.publisher.Publish(events.Event{Name: "session_released", Model: path, Fields: map[string]any{}})
	return m.release(sess)
}
