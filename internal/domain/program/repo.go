package program

import (
	"context"

	"github.com/google/uuid"
)

// ProgramFilter narrows program listings.
type ProgramFilter struct {
	CategoryID *uuid.UUID
	Status     string
	Search     string
}

type ProgramRepository interface {
	Create(ctx context.Context, p *HealthProgram) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthProgram, error)
	Update(ctx context.Context, p *HealthProgram) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ProgramFilter, limit, offset int) ([]*HealthProgram, int, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, isActive *bool, limit, offset int) ([]*Category, int, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e *Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	GetByParticipantAndProgram(ctx context.Context, participantID, programID uuid.UUID) (*Enrollment, error)
	Update(ctx context.Context, e *Enrollment) error
	ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*EnrollmentWithProgram, error)
	// ActiveCountsByProgram counts active enrollments grouped by program,
	// restricted to active programs whose end date has not passed.
	ActiveCountsByProgram(ctx context.Context) ([]*ProgramCount, error)
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	HealthProgramID *uuid.UUID
	Status          string
	Priority        string
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List orders by priority (high first) then newest.
	List(ctx context.Context, f TaskFilter, limit, offset int) ([]*Task, int, error)
}
