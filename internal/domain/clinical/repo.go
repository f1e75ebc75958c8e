package clinical

import (
	"context"

	"github.com/google/uuid"
)

// RecordFilter narrows a record list. UserID matches the record's author.
type RecordFilter struct {
	UserID    *uuid.UUID
	PatientID *uuid.UUID
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	// GetByID loads the record with its patient summary.
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns matches newest recordDate first.
	List(ctx context.Context, f RecordFilter, limit, offset int) ([]*MedicalRecord, int, error)
}
