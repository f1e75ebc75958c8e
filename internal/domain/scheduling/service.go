package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
)

type Service struct {
	appointments AppointmentRepository
}

func NewService(appointments AppointmentRepository) *Service {
	return &Service{appointments: appointments}
}

// CreateAppointment books a new SCHEDULED appointment owned by the actor.
func (s *Service) CreateAppointment(ctx context.Context, actor auth.Actor, in AppointmentInput) (*Appointment, error) {
	d, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceAppointment, Operation: auth.OpCreate})
	if err != nil {
		return nil, err
	}
	owner, err := uuid.Parse(d.AssignOwner)
	if err != nil {
		return nil, fmt.Errorf("appointment owner %q: %w", d.AssignOwner, apperr.ErrUnauthenticated)
	}

	a := &Appointment{}
	in.Status = nil
	if err := in.apply(a); err != nil {
		return nil, err
	}
	a.Status = auth.StatusScheduled
	a.UserID = &owner
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return s.appointments.GetByID(ctx, a.ID)
}

func (s *Service) GetAppointment(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Appointment, error) {
	if err := auth.Authenticate(actor); err != nil {
		return nil, err
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(auth.Request{
		Actor: actor, Resource: auth.ResourceAppointment, Operation: auth.OpRead,
		OwnerID: auth.OwnerID(a.UserID),
	}); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAppointments returns every appointment for an admin and only the
// caller's own bookings for anyone else. A status no appointment can hold
// matches nothing.
func (s *Service) ListAppointments(ctx context.Context, actor auth.Actor, f AppointmentFilter, limit, offset int) ([]*Appointment, int, error) {
	d, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceAppointment, Operation: auth.OpList})
	if err != nil {
		return nil, 0, err
	}
	owner, err := auth.FilterUserID(d.Filter)
	if err != nil {
		return nil, 0, err
	}
	f.UserID = owner
	return s.appointments.List(ctx, f, limit, offset)
}

// UpdateAppointment edits the booking details. Status only changes through
// TransitionStatus.
func (s *Service) UpdateAppointment(ctx context.Context, actor auth.Actor, id uuid.UUID, in AppointmentInput) (*Appointment, error) {
	if err := auth.Authenticate(actor); err != nil {
		return nil, err
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(auth.Request{
		Actor: actor, Resource: auth.ResourceAppointment, Operation: auth.OpUpdate,
		OwnerID: auth.OwnerID(a.UserID),
	}); err != nil {
		return nil, err
	}
	if err := in.apply(a); err != nil {
		return nil, err
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.appointments.GetByID(ctx, id)
}

// TransitionStatus moves a SCHEDULED appointment to a terminal status.
func (s *Service) TransitionStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, target string) (*Appointment, error) {
	if err := auth.Authenticate(actor); err != nil {
		return nil, err
	}
	if !ValidStatus(target) {
		return nil, apperr.Validation("Invalid status")
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(auth.Request{
		Actor: actor, Resource: auth.ResourceAppointment, Operation: auth.OpStatusTransition,
		OwnerID: auth.OwnerID(a.UserID), CurrentStatus: a.Status, TargetStatus: target,
	}); err != nil {
		return nil, err
	}
	if err := s.appointments.UpdateStatus(ctx, id, a.Status, target); err != nil {
		return nil, err
	}
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if _, err := auth.Authorize(auth.Request{Actor: actor, Resource: auth.ResourceAppointment, Operation: auth.OpDelete}); err != nil {
		return err
	}
	return s.appointments.Delete(ctx, id)
}
