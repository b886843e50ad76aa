package bridge

import (
	"errors"
	"net/http"

	"genaid/internal/artifact"
	"genaid/internal/lane"
	"genaid/internal/session"
)

// ValidationError reports a missing or malformed call parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Field + " " + e.Reason
	}
	return e.Field + " is required"
}

func missing(field string) error { return &ValidationError{Field: field} }

// IsValidation reports whether err is a parameter validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StatusCode maps a call error to the HTTP-style status code transports report.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err), errors.Is(err, artifact.ErrInvalidFileName):
		return http.StatusBadRequest
	case session.IsNotInitialized(err), errors.Is(err, session.ErrAlreadyInitializing):
		return http.StatusConflict
	case errors.Is(err, lane.ErrClosed), session.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case artifact.IsTransport(err):
		return http.StatusBadGateway
	case session.IsInitialization(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// DownloadError wraps any failure of a queued download.
type DownloadError struct {
	FileName string
	Err      error
}

func (e *DownloadError) Error() string { return "download failed: " + e.Err.Error() }

func (e *DownloadError) Unwrap() error { return e.Err }
