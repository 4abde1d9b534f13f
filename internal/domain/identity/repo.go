package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserFilter narrows List results. Nil fields mean no filtering.
type UserFilter struct {
	Role     *string
	IsActive *bool
	Search   string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f UserFilter, limit, offset int) ([]*User, int, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role string) (int, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

// ParticipantFilter narrows participant listings.
type ParticipantFilter struct {
	InsuranceID *uuid.UUID
	Search      string
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Participant, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Participant, error)
	GetByPhone(ctx context.Context, phone string) (*Participant, error)
	GetByIdentityNumber(ctx context.Context, identityNumber string) (*Participant, error)
	Update(ctx context.Context, p *Participant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ParticipantFilter, limit, offset int) ([]*Participant, int, error)
}
