package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/auth"
)

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
}

func NewService(patients PatientRepository, doctors DoctorRepository) *Service {
	return &Service{patients: patients, doctors: doctors}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, actor auth.Actor, in PatientInput) (*Patient, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourcePatient, Operation: auth.OpCreate}); err != nil {
		return nil, err
	}
	p := &Patient{}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Patient, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourcePatient, Operation: auth.OpRead}); err != nil {
		return nil, err
	}
	return s.patients.GetByID(ctx, id)
}

// ListPatients returns the patient directory to any signed-in actor.
func (s *Service) ListPatients(ctx context.Context, actor auth.Actor, f PatientFilter, limit, offset int) ([]*Patient, int, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourcePatient, Operation: auth.OpList}); err != nil {
		return nil, 0, err
	}
	return s.patients.List(ctx, f, limit, offset)
}

func (s *Service) UpdatePatient(ctx context.Context, actor auth.Actor, id uuid.UUID, in PatientInput) (*Patient, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourcePatient, Operation: auth.OpUpdate}); err != nil {
		return nil, err
	}
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePatient removes a patient that no appointment or record refers to.
func (s *Service) DeletePatient(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	req := auth.Request{Actor: actor, Resource: auth.ResourcePatient, Operation: auth.OpDelete}
	if _, err := auth.Authorize(req); err != nil {
		return err
	}
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.patients.CountDependents(ctx, id)
	if err != nil {
		return err
	}
	req.Dependents = n
	if _, err := auth.Authorize(req); err != nil {
		return err
	}
	return s.patients.Delete(ctx, id)
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, actor auth.Actor, in DoctorInput) (*Doctor, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceDoctor, Operation: auth.OpCreate}); err != nil {
		return nil, err
	}
	d := &Doctor{}
	if err := in.apply(d); err != nil {
		return nil, err
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Doctor, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceDoctor, Operation: auth.OpRead}); err != nil {
		return nil, err
	}
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, actor auth.Actor, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceDoctor, Operation: auth.OpList}); err != nil {
		return nil, 0, err
	}
	return s.doctors.List(ctx, f, limit, offset)
}

func (s *Service) UpdateDoctor(ctx context.Context, actor auth.Actor, id uuid.UUID, in DoctorInput) (*Doctor, error) {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceDoctor, Operation: auth.OpUpdate}); err != nil {
		return nil, err
	}
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(d); err != nil {
		return nil, err
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDoctor removes a doctor without appointments.
func (s *Service) DeleteDoctor(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	req := auth.Request{Actor: actor, Resource: auth.ResourceDoctor, Operation: auth.OpDelete}
	if _, err := auth.Authorize(req); err != nil {
		return err
	}
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.doctors.CountDependents(ctx, id)
	if err != nil {
		return err
	}
	req.Dependents = n
	if _, err := auth.Authorize(req); err != nil {
		return err
	}
	return s.doctors.Delete(ctx, id)
}
