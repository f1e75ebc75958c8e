package auth

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
)

// Err converts a denied decision into the matching apperr sentinel.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return apperr.ErrUnauthenticated
	case ReasonInvalidTransition:
		return apperr.ErrInvalidTransition
	case ReasonHasDependents:
		return apperr.ErrHasDependents
	default:
		return apperr.ErrForbidden
	}
}

// Authorize evaluates req and returns the decision together with the error
// a service should return when it is denied.
func Authorize(req Request) (Decision, error) {
	d := Evaluate(req)
	return d, d.Err()
}

// Authenticate rejects an actor without a session before any row is read,
// so a missing id cannot be told apart from a hidden one.
func Authenticate(a Actor) error {
	if !a.Authenticated() {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// OwnerID formats an optional owning user id for Request.OwnerID.
func OwnerID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// FilterUserID converts a row filter into the user id a repository should
// match, or nil when every row is visible.
func FilterUserID(f RowFilter) (*uuid.UUID, error) {
	if f.All() {
		return nil, nil
	}
	id, err := uuid.Parse(f.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("row filter owner %q: %w", f.OwnerID, apperr.ErrUnauthenticated)
	}
	return &id, nil
}
