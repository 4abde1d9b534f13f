package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles a user account can hold. Stored unabbreviated in the role column.
const (
	RoleAdmin       = "admin"
	RoleStaff       = "staff"
	RoleDoctor      = "doctor"
	RoleParticipant = "participant"
)

var validRoles = map[string]bool{
	RoleAdmin: true, RoleStaff: true, RoleDoctor: true, RoleParticipant: true,
}

// User maps to the users table. PasswordHash never serializes.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	FullName     string     `db:"full_name" json:"full_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Participant maps to the participants table. When the participant is linked
// to a login account, ID equals the linked user's ID and UserID is set.
type Participant struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	UserID          *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name            string     `db:"name" json:"name"`
	Email           *string    `db:"email" json:"email,omitempty"`
	Phone           *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth     *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Address         *string    `db:"address" json:"address,omitempty"`
	IdentityNumber  *string    `db:"identity_number" json:"identity_number,omitempty"`
	InsuranceID     *uuid.UUID `db:"insurance_id" json:"insurance_id,omitempty"`
	InsuranceNumber *string    `db:"insurance_number" json:"insurance_number,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the self-service sign-up body. It creates a user with the
// participant role plus a linked participant profile in one transaction.
type Registration struct {
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	Password       string     `json:"password"`
	Phone          *string    `json:"phone,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Address        *string    `json:"address,omitempty"`
	IdentityNumber *string    `json:"identity_number,omitempty"`
}

// CreateUserInput is the admin-facing user create body.
type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// UpdateUserInput carries the updatable user fields; nil means keep existing.
type UpdateUserInput struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// UpdateParticipantInput carries updatable participant fields; nil keeps existing.
type UpdateParticipantInput struct {
	Name            *string    `json:"name,omitempty"`
	Email           *string    `json:"email,omitempty"`
	Phone           *string    `json:"phone,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	Address         *string    `json:"address,omitempty"`
	IdentityNumber  *string    `json:"identity_number,omitempty"`
	InsuranceID     *uuid.UUID `json:"insurance_id,omitempty"`
	InsuranceNumber *string    `json:"insurance_number,omitempty"`
}
