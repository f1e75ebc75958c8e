package identity

import (
	"context"

	"github.com/google/uuid"
)

// PatientFilter narrows a patient list by a case-insensitive name match.
type PatientFilter struct {
	Name string
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f PatientFilter, limit, offset int) ([]*Patient, int, error)
	// CountDependents counts appointments and medical records of the patient.
	CountDependents(ctx context.Context, id uuid.UUID) (int, error)
}

type DoctorFilter struct {
	Specialization string
	Name           string
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error)
	// CountDependents counts appointments booked with the doctor.
	CountDependents(ctx context.Context, id uuid.UUID) (int, error)
}
