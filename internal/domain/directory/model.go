package directory

import (
	"time"

	"github.com/google/uuid"
)

// Doctor maps to the doctors table. Schedule is the list of weekdays the
// doctor takes appointments, stored as jsonb.
type Doctor struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	SpecializationID uuid.UUID `db:"specialization_id" json:"specialization_id"`
	Email            *string   `db:"email" json:"email,omitempty"`
	Phone            *string   `db:"phone" json:"phone,omitempty"`
	Schedule         []string  `db:"schedule" json:"schedule"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Specialization maps to the specializations table.
type Specialization struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Insurance maps to the insurances table.
type Insurance struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Coverage    *string   `db:"coverage" json:"coverage,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateDoctorInput carries updatable doctor fields; nil keeps existing.
type UpdateDoctorInput struct {
	Name             *string    `json:"name,omitempty"`
	SpecializationID *uuid.UUID `json:"specialization_id,omitempty"`
	Email            *string    `json:"email,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Schedule         []string   `json:"schedule,omitempty"`
}

// UpdateSpecializationInput carries updatable specialization fields.
type UpdateSpecializationInput struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UpdateInsuranceInput carries updatable insurance fields.
type UpdateInsuranceInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Coverage    *string `json:"coverage,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
