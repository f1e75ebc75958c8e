package admin

import (
	"context"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/auth"
)

type Service struct {
	departments DepartmentRepository
	staff       StaffRepository
}

func NewService(departments DepartmentRepository, staff StaffRepository) *Service {
	return &Service{departments: departments, staff: staff}
}

func authorize(actor auth.Actor, res auth.Resource, op auth.Operation) error {
	_, err := auth.Authorize(auth.Request{Actor: actor, Resource: res, Operation: op})
	return err
}

// -- Department --

func (s *Service) CreateDepartment(ctx context.Context, actor auth.Actor, in DepartmentInput) (*Department, error) {
	if err := authorize(actor, auth.ResourceDepartment, auth.OpCreate); err != nil {
		return nil, err
	}
	d := &Department{}
	if err := in.apply(d); err != nil {
		return nil, err
	}
	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDepartment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Department, error) {
	if err := authorize(actor, auth.ResourceDepartment, auth.OpRead); err != nil {
		return nil, err
	}
	return s.departments.GetByID(ctx, id)
}

func (s *Service) ListDepartments(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Department, int, error) {
	if err := authorize(actor, auth.ResourceDepartment, auth.OpList); err != nil {
		return nil, 0, err
	}
	return s.departments.List(ctx, limit, offset)
}

func (s *Service) UpdateDepartment(ctx context.Context, actor auth.Actor, id uuid.UUID, in DepartmentInput) (*Department, error) {
	if err := authorize(actor, auth.ResourceDepartment, auth.OpUpdate); err != nil {
		return nil, err
	}
	d, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(d); err != nil {
		return nil, err
	}
	if err := s.departments.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := authorize(actor, auth.ResourceDepartment, auth.OpDelete); err != nil {
		return err
	}
	return s.departments.Delete(ctx, id)
}

// -- Staff --
// Every staff operation is admin only since rows carry salaries.

func (s *Service) CreateStaff(ctx context.Context, actor auth.Actor, in StaffInput) (*Staff, error) {
	if err := authorize(actor, auth.ResourceStaff, auth.OpCreate); err != nil {
		return nil, err
	}
	m := &Staff{}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	if err := s.staff.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) GetStaff(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Staff, error) {
	if err := authorize(actor, auth.ResourceStaff, auth.OpRead); err != nil {
		return nil, err
	}
	return s.staff.GetByID(ctx, id)
}

func (s *Service) ListStaff(ctx context.Context, actor auth.Actor, f StaffFilter, limit, offset int) ([]*Staff, int, error) {
	if err := authorize(actor, auth.ResourceStaff, auth.OpList); err != nil {
		return nil, 0, err
	}
	return s.staff.List(ctx, f, limit, offset)
}

func (s *Service) UpdateStaff(ctx context.Context, actor auth.Actor, id uuid.UUID, in StaffInput) (*Staff, error) {
	if err := authorize(actor, auth.ResourceStaff, auth.OpUpdate); err != nil {
		return nil, err
	}
	m, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	if err := s.staff.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteStaff(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := authorize(actor, auth.ResourceStaff, auth.OpDelete); err != nil {
		return err
	}
	return s.staff.Delete(ctx, id)
}
