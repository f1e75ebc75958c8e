// Package apperr defines the error taxonomy shared by services and handlers
// and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrHasDependents     = errors.New("resource has dependent records")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps an unexpected persistence failure. Op is a short verb
// phrase such as "fetch appointments"; clients see only "Failed to <op>"
// while the cause is logged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StoreError) Unwrap() error { return e.Err }

// StoreFailure wraps err as a StoreError for the given operation.
func StoreFailure(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// NotFound returns ErrNotFound annotated with the missing entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Mapper converts errors into an HTTP status and client-facing message.
type Mapper struct {
	// StrictForbidden reports role or ownership denials as 403. When false
	// they are reported as 401, which is what existing clients expect.
	StrictForbidden bool
}

// Status returns the HTTP status code and public message for err.
func (m Mapper) Status(err error) (int, string) {
	var (
		verr *ValidationError
		serr *StoreError
	)
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, ErrForbidden):
		if m.StrictForbidden {
			return http.StatusForbidden, "Forbidden"
		}
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, capitalize(err.Error())
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict, "A record with this unique value already exists"
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, "Appointment status cannot be changed from its current state"
	case errors.Is(err, ErrHasDependents):
		return http.StatusConflict, "Resource is still referenced by other records"
	case errors.As(err, &serr):
		return http.StatusInternalServerError, "Failed to " + serr.Op
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
