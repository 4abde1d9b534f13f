package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic/internal/platform/apperr"
)

// ParticipantDirectory resolves a login account to its participant profile.
type ParticipantDirectory interface {
	ParticipantIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	appointments Repository
	participants ParticipantDirectory
	now          func() time.Time
}

func NewService(appointments Repository, participants ParticipantDirectory) *Service {
	return &Service{appointments: appointments, participants: participants, now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	if a.ParticipantID == uuid.Nil {
		return nil, apperr.Validationf("participant_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return nil, apperr.Validationf("doctor_id is required")
	}
	if a.Date.IsZero() {
		return nil, apperr.Validationf("date is required")
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return nil, apperr.Validationf("invalid status: %s", a.Status)
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update replaces participant, doctor and date; status keeps its stored value
// when the request omits it. Completed and cancelled appointments may not
// change status again.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.ParticipantID == uuid.Nil {
		return nil, apperr.Validationf("participant_id is required")
	}
	if in.DoctorID == uuid.Nil {
		return nil, apperr.Validationf("doctor_id is required")
	}
	if in.Date == nil || in.Date.IsZero() {
		return nil, apperr.Validationf("date is required")
	}

	if in.Status != nil && *in.Status != a.Status {
		if !validStatuses[*in.Status] {
			return nil, apperr.Validationf("invalid status: %s", *in.Status)
		}
		if a.Status != StatusScheduled {
			return nil, apperr.Validationf("appointment is already %s", a.Status)
		}
		a.Status = *in.Status
	}

	a.ParticipantID = in.ParticipantID
	a.DoctorID = in.DoctorID
	a.Date = *in.Date
	if in.Time != nil {
		a.Time = in.Time
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}

	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.appointments.GetByID(ctx, id); err != nil {
		return err
	}
	return s.appointments.Delete(ctx, id)
}

// Mine returns the caller's appointments. Before reading, it sweeps the
// caller's past-dated scheduled appointments to completed so the response
// always reflects elapsed time. The sweep is scoped to one participant and
// safe to repeat.
func (s *Service) Mine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	pid, err := s.participants.ParticipantIDForUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if _, err := s.appointments.CompletePastScheduled(ctx, pid, today); err != nil {
		return nil, 0, err
	}

	return s.appointments.List(ctx, Filter{ParticipantID: &pid}, limit, offset)
}
