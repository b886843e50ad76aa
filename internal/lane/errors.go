package lane

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Submit after Close has been called.
var ErrClosed = errors.New("lane closed")

// PanicError carries a value recovered from a panicking task.
type PanicError struct {
	Op    string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("task %s panicked: %v", e.Op, e.Value) }

// IsPanic reports whether err was produced by a recovered task panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
