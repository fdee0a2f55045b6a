// Package apperror defines the engine's error taxonomy. Every layer returns
// these instead of backend-specific errors, so callers can branch with
// errors.Is regardless of which store is configured.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means an operation referenced an id or key that does not
	// exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a required field was empty after trimming.
	ErrValidation = errors.New("validation error")
	// ErrPersistence means the underlying storage failed to read or write
	// (corrupt file, disk full, lock contention).
	ErrPersistence = errors.New("persistence error")
)

// AppError carries a sentinel plus a human-readable message.
type AppError struct {
	Err     error  // sentinel, reachable via errors.Is
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound returns an AppError for an unknown id or key.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed returns an AppError for a rejected field.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// PersistenceFailed wraps a storage failure. The cause stays reachable
// through the message; errors.Is matches ErrPersistence.
func PersistenceFailed(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrPersistence,
		Message: fmt.Sprintf("%s: %v", op, cause),
	}
}
