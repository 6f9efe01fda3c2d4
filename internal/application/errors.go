package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the backend refuses the presented credential.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrSessionRequired is matched by every RedirectError.
	ErrSessionRequired = errors.New("application: session required")
	// ErrNothingToExport is returned when an export is requested for an empty list.
	ErrNothingToExport = errors.New("application: nothing to export")
	// ErrTransport is returned when the backend could not be reached at all.
	ErrTransport = errors.New("application: backend unreachable")
	// ErrMalformedRecord is returned when a response carries a record missing required fields.
	ErrMalformedRecord = errors.New("application: malformed record")
)

// StatusError is implemented by backend errors that carry an HTTP status and
// the message the server supplied with it.
type StatusError interface {
	error
	StatusCode() int
	ServerMessage() string
}

// RedirectReason explains why the session guard sent the caller back to the
// entry route.
type RedirectReason string

const (
	ReasonMissingCredentials RedirectReason = "missing_credentials"
	ReasonTokenExpired       RedirectReason = "token_expired"
	ReasonTokenRejected      RedirectReason = "token_rejected"
	ReasonValidationFailed   RedirectReason = "validation_failed"
)

// EntryRoute is where unauthenticated callers are sent.
const EntryRoute = "/"

// RedirectError reports that the caller must be sent to Route instead of the
// requested screen.
type RedirectError struct {
	Route  string
	Reason RedirectReason
	Err    error
}

// Error implements the error interface.
func (e *RedirectError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("redirect to %s (%s): %v", e.Route, e.Reason, e.Err)
	}
	return fmt.Sprintf("redirect to %s (%s)", e.Route, e.Reason)
}

// Is reports ErrSessionRequired for every redirect.
func (e *RedirectError) Is(target error) bool {
	return target == ErrSessionRequired
}

// Unwrap exposes the validation failure behind the redirect, if any.
func (e *RedirectError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func redirect(reason RedirectReason, err error) *RedirectError {
	return &RedirectError{Route: EntryRoute, Reason: reason, Err: err}
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 1 {
		for field, msg := range v.FieldErrors {
			return fmt.Sprintf("validation failed: %s: %s", field, msg)
		}
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Messages returns the recorded messages ordered by the supplied field order,
// followed by any remaining fields.
func (v *ValidationError) Messages(order ...string) []string {
	if !v.HasErrors() {
		return nil
	}
	seen := make(map[string]struct{}, len(v.FieldErrors))
	out := make([]string, 0, len(v.FieldErrors))
	for _, field := range order {
		if msg, ok := v.FieldErrors[field]; ok {
			out = append(out, msg)
			seen[field] = struct{}{}
		}
	}
	for field, msg := range v.FieldErrors {
		if _, ok := seen[field]; !ok {
			out = append(out, msg)
		}
	}
	return out
}

// add records a field level validation error. The first message recorded for
// a field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
