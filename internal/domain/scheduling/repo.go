package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter narrows an appointment list. UserID is set from the
// caller's visibility, never from the query string.
type AppointmentFilter struct {
	UserID    *uuid.UUID
	Status    string
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	From      *time.Time
	To        *time.Time
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	// GetByID loads the appointment with its patient and doctor summaries.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	// UpdateStatus moves the appointment from one status to another. It
	// returns apperr.ErrInvalidTransition when the row is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns matches ordered by date ascending.
	List(ctx context.Context, f AppointmentFilter, limit, offset int) ([]*Appointment, int, error)
}
