package clinical

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
)

type Service struct {
	records MedicalRecordRepository
	now     func() time.Time
}

func NewService(records MedicalRecordRepository) *Service {
	return &Service{records: records, now: time.Now}
}

// CreateRecord stores a record authored by the actor. Admin only.
func (s *Service) CreateRecord(ctx context.Context, actor auth.Actor, in RecordInput) (*MedicalRecord, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceMedicalRecord, Operation: auth.OpCreate}); err != nil {
		return nil, err
	}
	author, err := uuid.Parse(actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("record author %q: %w", actor.UserID, apperr.ErrUnauthenticated)
	}
	rec := &MedicalRecord{UserID: &author}
	if err := in.apply(rec, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return s.records.GetByID(ctx, rec.ID)
}

func (s *Service) GetRecord(ctx context.Context, actor auth.Actor, id uuid.UUID) (*MedicalRecord, error) {
	if err := auth.Authenticate(actor); err != nil {
		return nil, err
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(auth.Request{
		Actor: actor, Resource: auth.ResourceMedicalRecord, Operation: auth.OpRead,
		OwnerID: auth.OwnerID(rec.UserID),
	}); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRecords returns every record for an admin and the records the caller
// authored for anyone else.
func (s *Service) ListRecords(ctx context.Context, actor auth.Actor, f RecordFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	d, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceMedicalRecord, Operation: auth.OpList})
	if err != nil {
		return nil, 0, err
	}
	owner, err := auth.FilterUserID(d.Filter)
	if err != nil {
		return nil, 0, err
	}
	f.UserID = owner
	return s.records.List(ctx, f, limit, offset)
}

func (s *Service) UpdateRecord(ctx context.Context, actor auth.Actor, id uuid.UUID, in RecordInput) (*MedicalRecord, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceMedicalRecord, Operation: auth.OpUpdate}); err != nil {
		return nil, err
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(rec, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return s.records.GetByID(ctx, id)
}

func (s *Service) DeleteRecord(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceMedicalRecord, Operation: auth.OpDelete}); err != nil {
		return err
	}
	return s.records.Delete(ctx, id)
}
