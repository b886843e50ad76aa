package artifact

import (
	"errors"
	"fmt"
)

// ErrInvalidFileName is returned for names that are not a single path element.
var ErrInvalidFileName = errors.New("invalid file name")

// TransportError wraps a network failure while fetching an artifact.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// FilesystemError wraps a local write failure.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }

func (e *FilesystemError) Unwrap() error { return e.Err }

// StatusError is the transport cause for a non-2xx HTTP response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return "unexpected status " + e.Status }

// IsTransport reports whether err is a network failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsFilesystem reports whether err is a local write failure.
func IsFilesystem(err error) bool {
	var fe *FilesystemError
	return errors.As(err, &fe)
}
