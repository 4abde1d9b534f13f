package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows appointment listings. Nil/empty fields mean no filtering.
type Filter struct {
	ParticipantID *uuid.UUID
	DoctorID      *uuid.UUID
	Status        string
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
	// CompletePastScheduled transitions the participant's scheduled
	// appointments dated before the cutoff to completed. Idempotent.
	CompletePastScheduled(ctx context.Context, participantID uuid.UUID, before time.Time) (int64, error)
}
