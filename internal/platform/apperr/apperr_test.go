package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapper_Status(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		strict  bool
		code    int
		message string
	}{
		{"validation", Validation("Name and email are required"), false, http.StatusBadRequest, "Name and email are required"},
		{"unauthenticated", ErrUnauthenticated, false, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden lenient", ErrForbidden, false, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden strict", ErrForbidden, true, http.StatusForbidden, "Forbidden"},
		{"not found", NotFound("patient"), false, http.StatusNotFound, "Patient not found"},
		{"duplicate", fmt.Errorf("create doctor: %w", ErrDuplicate), false, http.StatusConflict, "A record with this unique value already exists"},
		{"transition", ErrInvalidTransition, false, http.StatusConflict, "Appointment status cannot be changed from its current state"},
		{"dependents", ErrHasDependents, false, http.StatusConflict, "Resource is still referenced by other records"},
		{"store", StoreFailure("fetch appointments", errors.New("connection reset")), false, http.StatusInternalServerError, "Failed to fetch appointments"},
		{"unknown", errors.New("boom"), false, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := Mapper{StrictForbidden: tt.strict}.Status(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestStoreFailure_Unwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := StoreFailure("get patient", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "get patient: connection reset", err.Error())
}
