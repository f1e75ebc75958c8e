package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
	"github.com/chaman/hospital/pkg/dates"
	"github.com/chaman/hospital/pkg/formvalue"
)

// Appointment is a booked visit of a patient with a doctor. UserID is the
// account that booked it and owns it.
type Appointment struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Date      time.Time  `db:"date" json:"date"`
	Time      string     `db:"time" json:"time"`
	Status    string     `db:"status" json:"status"`
	Reason    *string    `db:"reason" json:"reason"`
	Notes     *string    `db:"notes" json:"notes"`
	PatientID uuid.UUID  `db:"patient_id" json:"patientId"`
	DoctorID  uuid.UUID  `db:"doctor_id" json:"doctorId"`
	UserID    *uuid.UUID `db:"user_id" json:"userId"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`

	Patient *PatientSummary `json:"patient,omitempty"`
	Doctor  *DoctorSummary  `json:"doctor,omitempty"`
}

type PatientSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone *string   `json:"phone"`
}

type DoctorSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Specialization string    `json:"specialization"`
}

// AppointmentInput is the body of POST and PUT /appointments. A userId in
// the body is ignored; the owner is always the caller.
type AppointmentInput struct {
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	PatientID string  `json:"patientId"`
	DoctorID  string  `json:"doctorId"`
	Reason    *string `json:"reason"`
	Notes     *string `json:"notes"`
	Status    *string `json:"status"`
}

// StatusInput is the body of PATCH /appointments/:id/status.
type StatusInput struct {
	Status string `json:"status"`
}

var statuses = map[string]bool{
	auth.StatusScheduled: true,
	auth.StatusCompleted: true,
	auth.StatusCancelled: true,
	auth.StatusNoShow:    true,
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool { return statuses[s] }

func (in AppointmentInput) apply(a *Appointment) error {
	date := formvalue.String(&in.Date)
	tm := formvalue.String(&in.Time)
	patient := formvalue.String(&in.PatientID)
	doctor := formvalue.String(&in.DoctorID)
	if date == nil || tm == nil || patient == nil || doctor == nil {
		return apperr.Validation("Date, time, patient, and doctor are required")
	}
	d, err := dates.Parse(*date)
	if err != nil {
		return apperr.Validation("Invalid date")
	}
	patientID, err := uuid.Parse(*patient)
	if err != nil {
		return apperr.Validation("Invalid patientId")
	}
	doctorID, err := uuid.Parse(*doctor)
	if err != nil {
		return apperr.Validation("Invalid doctorId")
	}
	if s := formvalue.String(in.Status); s != nil && a.Status != "" && *s != a.Status {
		return apperr.Validation("Use PATCH /appointments/{id}/status to change status")
	}

	a.Date = d
	a.Time = *tm
	a.PatientID = patientID
	a.DoctorID = doctorID
	a.Reason = formvalue.String(in.Reason)
	a.Notes = formvalue.String(in.Notes)
	return nil
}
