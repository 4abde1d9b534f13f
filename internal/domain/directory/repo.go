package directory

import (
	"context"

	"github.com/google/uuid"
)

// DoctorFilter narrows doctor listings.
type DoctorFilter struct {
	SpecializationID *uuid.UUID
	Search           string
	// Alphabetical orders by name instead of newest-first; used by the
	// public directory listing.
	Alphabetical bool
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error)
}

type SpecializationRepository interface {
	Create(ctx context.Context, s *Specialization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Specialization, error)
	GetByName(ctx context.Context, name string) (*Specialization, error)
	Update(ctx context.Context, s *Specialization) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, isActive *bool, limit, offset int) ([]*Specialization, int, error)
}

type InsuranceRepository interface {
	Create(ctx context.Context, i *Insurance) error
	GetByID(ctx context.Context, id uuid.UUID) (*Insurance, error)
	GetByName(ctx context.Context, name string) (*Insurance, error)
	Update(ctx context.Context, i *Insurance) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, isActive *bool, limit, offset int) ([]*Insurance, int, error)
}
