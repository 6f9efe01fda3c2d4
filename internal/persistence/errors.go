package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConstraintViolation is returned when a record is missing a key field
	// or violates a table constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrSealed is returned when a stored token cannot be opened with the
	// configured secret.
	ErrSealed = errors.New("persistence: sealed value cannot be opened")
)
