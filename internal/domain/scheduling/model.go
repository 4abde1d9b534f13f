package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Completed and cancelled are terminal.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true, StatusCancelled: true,
}

// Appointment maps to the appointments table. Date carries the calendar day;
// Time is the free-form clinic slot label ("09:30") when one was picked.
type Appointment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ParticipantID uuid.UUID `db:"participant_id" json:"participant_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date          time.Time `db:"date" json:"date"`
	Time          *string   `db:"time" json:"time,omitempty"`
	Status        string    `db:"status" json:"status"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateInput carries the appointment fields a PUT may change. Status keeps
// its existing value when absent.
type UpdateInput struct {
	ParticipantID uuid.UUID  `json:"participant_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	Date          *time.Time `json:"date,omitempty"`
	Time          *string    `json:"time,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}
