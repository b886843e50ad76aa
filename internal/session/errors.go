package session

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when generation is requested with no Ready session.
var ErrNotInitialized = errors.New("model not initialized, call initModel first")

// ErrAlreadyInitializing is returned when Initialize overlaps another Initialize.
var ErrAlreadyInitializing = errors.New("model initialization already in progress")

// ErrClosedDuringInit is the cause reported by an Initialize that finished
// after Close; its session was released rather than installed.
var ErrClosedDuringInit = errors.New("session manager closed during initialization")

// InitializationError wraps a native session construction failure.
type InitializationError struct {
	Path string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// InferenceError wraps a native generation failure.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string { return fmt.Sprintf("inference failed: %v", e.Err) }

func (e *InferenceError) Unwrap() error { return e.Err }

// dependencyUnavailableError signals a runtime that was not built into this
// binary, so transports can report it as unavailable rather than internal.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var d dependencyUnavailableError
	return errors.As(err, &d)
}

// IsNotInitialized reports whether err means no session was Ready.
func IsNotInitialized(err error) bool { return errors.Is(err, ErrNotInitialized) }

// IsInitialization reports whether err is a session construction failure.
func IsInitialization(err error) bool {
	var ie *InitializationError
	return errors.As(err, &ie)
}

// IsInference reports whether err is a generation failure.
func IsInference(err error) bool {
	var ie *InferenceError
	return errors.As(err, &ie)
}

// panicError is what a recovered native panic becomes before it is wrapped.
type panicError struct{ v any }

func (e panicError) Error() string { return fmt.Sprintf("native panic: %v", e.v) }
