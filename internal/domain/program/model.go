package program

import (
	"time"

	"github.com/google/uuid"
)

// Health program statuses.
const (
	ProgramActive    = "active"
	ProgramCompleted = "completed"
	ProgramCancelled = "cancelled"
)

var validProgramStatuses = map[string]bool{
	ProgramActive: true, ProgramCompleted: true, ProgramCancelled: true,
}

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
)

// Task statuses and priorities. An inactive task is a completed one.
const (
	TaskActive   = "active"
	TaskInactive = "inactive"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var validTaskPriorities = map[string]bool{
	PriorityLow: true, PriorityMedium: true, PriorityHigh: true,
}

// HealthProgram maps to the health_programs table.
type HealthProgram struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Description     *string    `db:"description" json:"description,omitempty"`
	CategoryID      uuid.UUID  `db:"category_id" json:"category_id"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	Location        *string    `db:"location" json:"location,omitempty"`
	MaxParticipants *int       `db:"max_participants" json:"max_participants,omitempty"`
	Status          string     `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Category maps to the program_categories table.
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Color       *string   `db:"color" json:"color,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Enrollment maps to the enrollments table.
type Enrollment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ParticipantID   uuid.UUID  `db:"participant_id" json:"participant_id"`
	HealthProgramID uuid.UUID  `db:"health_program_id" json:"health_program_id"`
	Status          string     `db:"status" json:"status"`
	EnrollmentDate  time.Time  `db:"enrollment_date" json:"enrollment_date"`
	CompletionDate  *time.Time `db:"completion_date" json:"completion_date,omitempty"`
}

// EnrollmentWithProgram joins an enrollment to its program's name for the
// "my enrollments" listing.
type EnrollmentWithProgram struct {
	Enrollment
	ProgramName string `db:"program_name" json:"program_name"`
}

// ProgramCount is one row of the active-enrollment aggregate.
type ProgramCount struct {
	ProgramID uuid.UUID `db:"program_id" json:"program_id"`
	Name      string    `db:"name" json:"name"`
	Count     int       `db:"count" json:"count"`
}

// Task maps to the tasks table.
type Task struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	HealthProgramID uuid.UUID  `db:"health_program_id" json:"health_program_id"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	Status          string     `db:"status" json:"status"`
	Priority        string     `db:"priority" json:"priority"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CompletedBy     *uuid.UUID `db:"completed_by" json:"completed_by,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// UpdateProgramInput carries updatable program fields; nil keeps existing.
type UpdateProgramInput struct {
	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Location        *string    `json:"location,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
	Status          *string    `json:"status,omitempty"`
}

// UpdateCategoryInput carries updatable category fields.
type UpdateCategoryInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// EnrollInput is the enrollment request body.
type EnrollInput struct {
	ParticipantID   uuid.UUID `json:"participant_id"`
	HealthProgramID uuid.UUID `json:"health_program_id"`
}

// UpdateTaskInput carries updatable task fields. Setting Status to
// "inactive" or "completed" marks the task done.
type UpdateTaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}
