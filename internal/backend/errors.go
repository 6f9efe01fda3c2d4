package backend

import (
	"fmt"
	"net/http"

	"github.com/example/roombook-console/internal/application"
)

var (
	// ErrMalformedRecord is returned when a response carries a record without
	// its required fields. The whole response is rejected.
	ErrMalformedRecord = application.ErrMalformedRecord
	// ErrTransport is matched by every TransportError.
	ErrTransport = application.ErrTransport
)

// APIError is a non-success answer from the booking API.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// StatusCode implements application.StatusError.
func (e *APIError) StatusCode() int { return e.Status }

// ServerMessage implements application.StatusError.
func (e *APIError) ServerMessage() string { return e.Message }

// Is maps 401 to application.ErrUnauthorized and 404 to application.ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusUnauthorized:
		return target == application.ErrUnauthorized
	case http.StatusNotFound:
		return target == application.ErrNotFound
	}
	return false
}

// TransportError reports a request that never produced a response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap exposes the underlying network error.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports ErrTransport for every transport failure.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

var _ application.StatusError = (*APIError)(nil)
