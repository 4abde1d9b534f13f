package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinichq/clinic/internal/platform/apperr"
)

// ErrInvalidCredentials is returned by Authenticate for a bad username,
// bad password, or inactive account. Handlers map it to 401 without
// revealing which check failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TxRunner executes fn inside a database transaction. Repositories invoked
// with the ctx passed to fn join that transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn without a transaction. Used in tests.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	users        UserRepository
	participants ParticipantRepository
	tx           TxRunner
}

func NewService(users UserRepository, participants ParticipantRepository, tx TxRunner) *Service {
	return &Service{users: users, participants: participants, tx: tx}
}

// -- Users --

func (s *Service) ListUsers(ctx context.Context, f UserFilter, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, f, limit, offset)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if in.Username == "" {
		return nil, apperr.Validationf("username is required")
	}
	if in.Email == "" {
		return nil, apperr.Validationf("email is required")
	}
	if in.FullName == "" {
		return nil, apperr.Validationf("full_name is required")
	}
	if in.Password == "" {
		return nil, apperr.Validationf("password is required")
	}
	if in.Role == "" {
		in.Role = RoleStaff
	}
	if !validRoles[in.Role] {
		return nil, apperr.Validationf("invalid role: %s", in.Role)
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperr.Conflictf("username %q is already taken", in.Username)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflictf("email %q is already registered", in.Email)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	u := &User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     active,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != u.Username {
		if *in.Username == "" {
			return nil, apperr.Validationf("username cannot be empty")
		}
		if _, err := s.users.GetByUsername(ctx, *in.Username); err == nil {
			return nil, apperr.Conflictf("username %q is already taken", *in.Username)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		u.Username = *in.Username
	}
	if in.Email != nil && *in.Email != u.Email {
		if *in.Email == "" {
			return nil, apperr.Validationf("email cannot be empty")
		}
		if _, err := s.users.GetByEmail(ctx, *in.Email); err == nil {
			return nil, apperr.Conflictf("email %q is already registered", *in.Email)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		u.Email = *in.Email
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if in.Role != nil {
		if !validRoles[*in.Role] {
			return nil, apperr.Validationf("invalid role: %s", *in.Role)
		}
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if total <= 1 {
		return apperr.Validationf("cannot delete the last remaining user")
	}
	return s.users.Delete(ctx, id)
}

// Authenticate checks username/password and records the login time.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Register creates a participant-role user and its linked participant profile
// in one transaction. The participant row reuses the user's ID.
func (s *Service) Register(ctx context.Context, reg Registration) (*User, *Participant, error) {
	if reg.Username == "" || reg.Email == "" || reg.FullName == "" || reg.Password == "" {
		return nil, nil, apperr.Validationf("username, email, full_name and password are required")
	}
	if _, err := s.users.GetByUsername(ctx, reg.Username); err == nil {
		return nil, nil, apperr.Conflictf("username %q is already taken", reg.Username)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, err
	}
	if _, err := s.users.GetByEmail(ctx, reg.Email); err == nil {
		return nil, nil, apperr.Conflictf("email %q is already registered", reg.Email)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Username:     reg.Username,
		Email:        reg.Email,
		FullName:     reg.FullName,
		PasswordHash: string(hash),
		Role:         RoleParticipant,
		IsActive:     true,
	}
	email := reg.Email
	p := &Participant{
		ID:             u.ID,
		UserID:         &u.ID,
		Name:           reg.FullName,
		Email:          &email,
		Phone:          reg.Phone,
		DateOfBirth:    reg.DateOfBirth,
		Address:        reg.Address,
		IdentityNumber: reg.IdentityNumber,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, u); err != nil {
			return err
		}
		return s.participants.Create(ctx, p)
	})
	if err != nil {
		return nil, nil, err
	}
	return u, p, nil
}

// -- Participants --

func (s *Service) ListParticipants(ctx context.Context, f ParticipantFilter, limit, offset int) ([]*Participant, int, error) {
	return s.participants.List(ctx, f, limit, offset)
}

func (s *Service) GetParticipant(ctx context.Context, id uuid.UUID) (*Participant, error) {
	return s.participants.GetByID(ctx, id)
}

// GetParticipantByUser resolves the caller's participant profile from the
// token subject.
func (s *Service) GetParticipantByUser(ctx context.Context, userID uuid.UUID) (*Participant, error) {
	return s.participants.GetByUserID(ctx, userID)
}

func (s *Service) CreateParticipant(ctx context.Context, p *Participant) (*Participant, error) {
	if p.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if p.Phone != nil && *p.Phone != "" {
		if _, err := s.participants.GetByPhone(ctx, *p.Phone); err == nil {
			return nil, apperr.Conflictf("phone %q is already registered", *p.Phone)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	if p.IdentityNumber != nil && *p.IdentityNumber != "" {
		if _, err := s.participants.GetByIdentityNumber(ctx, *p.IdentityNumber); err == nil {
			return nil, apperr.Conflictf("identity number %q is already registered", *p.IdentityNumber)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	if err := s.participants.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateParticipant(ctx context.Context, id uuid.UUID, in UpdateParticipantInput) (*Participant, error) {
	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Phone != nil && (p.Phone == nil || *in.Phone != *p.Phone) && *in.Phone != "" {
		if _, err := s.participants.GetByPhone(ctx, *in.Phone); err == nil {
			return nil, apperr.Conflictf("phone %q is already registered", *in.Phone)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}
	if in.IdentityNumber != nil && (p.IdentityNumber == nil || *in.IdentityNumber != *p.IdentityNumber) && *in.IdentityNumber != "" {
		if _, err := s.participants.GetByIdentityNumber(ctx, *in.IdentityNumber); err == nil {
			return nil, apperr.Conflictf("identity number %q is already registered", *in.IdentityNumber)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		p.Name = *in.Name
	}
	if in.Email != nil {
		p.Email = in.Email
	}
	if in.Phone != nil {
		p.Phone = in.Phone
	}
	if in.DateOfBirth != nil {
		p.DateOfBirth = in.DateOfBirth
	}
	if in.Address != nil {
		p.Address = in.Address
	}
	if in.IdentityNumber != nil {
		p.IdentityNumber = in.IdentityNumber
	}
	if in.InsuranceID != nil {
		p.InsuranceID = in.InsuranceID
	}
	if in.InsuranceNumber != nil {
		p.InsuranceNumber = in.InsuranceNumber
	}

	if err := s.participants.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteParticipant removes the participant and, when the profile is linked
// to a login account, the account too, in one transaction. Deleting the last
// admin's profile is refused.
func (s *Service) DeleteParticipant(ctx context.Context, id uuid.UUID) error {
	p, err := s.participants.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var linked *User
	if p.UserID != nil {
		linked, err = s.users.GetByID(ctx, *p.UserID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
	}
	if linked != nil && linked.Role == RoleAdmin {
		admins, err := s.users.CountByRole(ctx, RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.Validationf("cannot delete the last admin user")
		}
	}

	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.participants.Delete(ctx, id); err != nil {
			return err
		}
		if linked != nil {
			return s.users.Delete(ctx, linked.ID)
		}
		return nil
	})
}
