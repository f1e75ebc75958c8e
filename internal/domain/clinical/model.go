package clinical

import (
	"time"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/pkg/dates"
	"github.com/chaman/hospital/pkg/formvalue"
)

// MedicalRecord is a diagnosis and treatment entry for a patient. UserID is
// the author and owns the record.
type MedicalRecord struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Diagnosis    string     `db:"diagnosis" json:"diagnosis"`
	Treatment    string     `db:"treatment" json:"treatment"`
	Prescription *string    `db:"prescription" json:"prescription"`
	Notes        *string    `db:"notes" json:"notes"`
	RecordDate   time.Time  `db:"record_date" json:"recordDate"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patientId"`
	UserID       *uuid.UUID `db:"user_id" json:"userId"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`

	Patient *PatientSummary `json:"patient,omitempty"`
}

type PatientSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// RecordInput is the body of POST and PUT /records.
type RecordInput struct {
	Diagnosis    string  `json:"diagnosis"`
	Treatment    string  `json:"treatment"`
	Prescription *string `json:"prescription"`
	Notes        *string `json:"notes"`
	PatientID    string  `json:"patientId"`
	RecordDate   *string `json:"recordDate"`
}

// apply validates the input and copies it onto r. A missing recordDate
// keeps r.RecordDate, or now for a new record.
func (in RecordInput) apply(r *MedicalRecord, now time.Time) error {
	diagnosis := formvalue.String(&in.Diagnosis)
	treatment := formvalue.String(&in.Treatment)
	patient := formvalue.String(&in.PatientID)
	if diagnosis == nil || treatment == nil || patient == nil {
		return apperr.Validation("Diagnosis, treatment, and patient are required")
	}
	patientID, err := uuid.Parse(*patient)
	if err != nil {
		return apperr.Validation("Invalid patientId")
	}
	recordDate, err := dates.ParseOptional(in.RecordDate)
	if err != nil {
		return apperr.Validation("Invalid recordDate")
	}

	r.Diagnosis = *diagnosis
	r.Treatment = *treatment
	r.Prescription = formvalue.String(in.Prescription)
	r.Notes = formvalue.String(in.Notes)
	r.PatientID = patientID
	switch {
	case recordDate != nil:
		r.RecordDate = *recordDate
	case r.RecordDate.IsZero():
		r.RecordDate = now
	}
	return nil
}
