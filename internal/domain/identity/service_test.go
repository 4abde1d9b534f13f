package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinichq/clinic/internal/platform/apperr"
)

type mockUserRepo struct {
	users     map[uuid.UUID]*User
	failOn    string
	lastLogin map[uuid.UUID]bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[uuid.UUID]*User{}, lastLogin: map[uuid.UUID]bool{}}
}

func (m *mockUserRepo) Create(ctx context.Context, u *User) error {
	if m.failOn == "create" {
		return errors.New("create failed")
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (m *mockUserRepo) Update(ctx context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperr.NotFoundf("user not found")
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.failOn == "delete" {
		return errors.New("delete failed")
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, f UserFilter, limit, offset int) ([]*User, int, error) {
	var items []*User
	for _, u := range m.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		cp := *u
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	m.lastLogin[id] = true
	return nil
}

type mockParticipantRepo struct {
	participants map[uuid.UUID]*Participant
	failOn       string
}

func newMockParticipantRepo() *mockParticipantRepo {
	return &mockParticipantRepo{participants: map[uuid.UUID]*Participant{}}
}

func (m *mockParticipantRepo) Create(ctx context.Context, p *Participant) error {
	if m.failOn == "create" {
		return errors.New("create failed")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.participants[p.ID] = &cp
	return nil
}

func (m *mockParticipantRepo) GetByID(ctx context.Context, id uuid.UUID) (*Participant, error) {
	p, ok := m.participants[id]
	if !ok {
		return nil, apperr.NotFoundf("participant not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockParticipantRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*Participant, error) {
	for _, p := range m.participants {
		if p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("participant not found")
}

func (m *mockParticipantRepo) GetByPhone(ctx context.Context, phone string) (*Participant, error) {
	for _, p := range m.participants {
		if p.Phone != nil && *p.Phone == phone {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("participant not found")
}

func (m *mockParticipantRepo) GetByIdentityNumber(ctx context.Context, idn string) (*Participant, error) {
	for _, p := range m.participants {
		if p.IdentityNumber != nil && *p.IdentityNumber == idn {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("participant not found")
}

func (m *mockParticipantRepo) Update(ctx context.Context, p *Participant) error {
	if _, ok := m.participants[p.ID]; !ok {
		return apperr.NotFoundf("participant not found")
	}
	cp := *p
	m.participants[p.ID] = &cp
	return nil
}

func (m *mockParticipantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.failOn == "delete" {
		return errors.New("delete failed")
	}
	delete(m.participants, id)
	return nil
}

func (m *mockParticipantRepo) List(ctx context.Context, f ParticipantFilter, limit, offset int) ([]*Participant, int, error) {
	var items []*Participant
	for _, p := range m.participants {
		cp := *p
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func newTestService() (*Service, *mockUserRepo, *mockParticipantRepo) {
	users := newMockUserRepo()
	parts := newMockParticipantRepo()
	return NewService(users, parts, PassthroughTx), users, parts
}

func TestCreateUser_RequiredFields(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "a@b.c", FullName: "A", Password: "x"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for missing username, got %v", err)
	}

	_, err = svc.CreateUser(context.Background(), CreateUserInput{Username: "a", Email: "a@b.c", FullName: "A"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for missing password, got %v", err)
	}
}

func TestCreateUser_HashesPassword(t *testing.T) {
	svc, users, _ := newTestService()

	u, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "jdoe", Email: "jdoe@clinic.test", FullName: "J Doe", Password: "secret", Role: "staff",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	stored := users.users[u.ID]
	if stored.PasswordHash == "secret" {
		t.Error("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret")) != nil {
		t.Error("stored hash does not verify against the password")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, CreateUserInput{Username: "jdoe", Email: "a@x.y", FullName: "A", Password: "p"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateUser(ctx, CreateUserInput{Username: "jdoe", Email: "b@x.y", FullName: "B", Password: "p"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict for duplicate username, got %v", err)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "x", Email: "x@y.z", FullName: "X", Password: "p", Role: "superuser",
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for unknown role, got %v", err)
	}
}

func TestUpdateUser_PartialMerge(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Username: "jdoe", Email: "j@x.y", FullName: "J Doe", Password: "p", Role: "staff"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Jane Doe"
	got, err := svc.UpdateUser(ctx, u.ID, UpdateUserInput{FullName: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.FullName != "Jane Doe" {
		t.Errorf("full name not updated: %s", got.FullName)
	}
	if got.Username != "jdoe" || got.Email != "j@x.y" || got.Role != "staff" {
		t.Error("unchanged fields were not preserved")
	}
}

func TestDeleteUser_LastUserGuard(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Username: "only", Email: "o@x.y", FullName: "Only", Password: "p"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.DeleteUser(ctx, u.ID)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error deleting the last user, got %v", err)
	}

	if _, err := svc.CreateUser(ctx, CreateUserInput{Username: "second", Email: "s@x.y", FullName: "S", Password: "p"}); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if err := svc.DeleteUser(ctx, u.ID); err != nil {
		t.Errorf("expected delete to succeed with two users, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Username: "jdoe", Email: "j@x.y", FullName: "J", Password: "secret"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Authenticate(ctx, "jdoe", "secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Error("wrong user returned")
	}
	if !users.lastLogin[u.ID] {
		t.Error("expected last_login to be touched")
	}

	if _, err := svc.Authenticate(ctx, "jdoe", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	inactive := false
	if _, err := svc.UpdateUser(ctx, u.ID, UpdateUserInput{IsActive: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "jdoe", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestRegister_CreatesUserAndParticipant(t *testing.T) {
	svc, users, parts := newTestService()

	u, p, err := svc.Register(context.Background(), Registration{
		Username: "newbie", Email: "n@x.y", FullName: "New Person", Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != RoleParticipant {
		t.Errorf("expected participant role, got %s", u.Role)
	}
	if p.ID != u.ID {
		t.Error("participant id should equal user id")
	}
	if p.UserID == nil || *p.UserID != u.ID {
		t.Error("participant not linked to user")
	}
	if _, ok := users.users[u.ID]; !ok {
		t.Error("user row missing")
	}
	if _, ok := parts.participants[p.ID]; !ok {
		t.Error("participant row missing")
	}
}

func TestRegister_FailurePropagates(t *testing.T) {
	users := newMockUserRepo()
	parts := newMockParticipantRepo()
	parts.failOn = "create"
	svc := NewService(users, parts, PassthroughTx)

	_, _, err := svc.Register(context.Background(), Registration{
		Username: "newbie", Email: "n@x.y", FullName: "New Person", Password: "pw",
	})
	if err == nil {
		t.Fatal("expected error when participant create fails")
	}
}

func TestCreateParticipant_DuplicatePhone(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	phone := "08123"
	if _, err := svc.CreateParticipant(ctx, &Participant{Name: "A", Phone: &phone}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateParticipant(ctx, &Participant{Name: "B", Phone: &phone})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict for duplicate phone, got %v", err)
	}
}

func TestDeleteParticipant_LastAdminGuard(t *testing.T) {
	svc, users, parts := newTestService()
	ctx := context.Background()

	admin := &User{ID: uuid.New(), Username: "root", Email: "r@x.y", Role: RoleAdmin, IsActive: true}
	users.users[admin.ID] = admin
	p := &Participant{ID: admin.ID, UserID: &admin.ID, Name: "Root"}
	parts.participants[p.ID] = p

	err := svc.DeleteParticipant(ctx, p.ID)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error deleting the last admin's profile, got %v", err)
	}

	other := &User{ID: uuid.New(), Username: "root2", Email: "r2@x.y", Role: RoleAdmin, IsActive: true}
	users.users[other.ID] = other

	if err := svc.DeleteParticipant(ctx, p.ID); err != nil {
		t.Fatalf("expected delete to succeed with two admins, got %v", err)
	}
	if _, ok := parts.participants[p.ID]; ok {
		t.Error("participant row still present")
	}
	if _, ok := users.users[admin.ID]; ok {
		t.Error("linked user row still present")
	}
}

func TestDeleteParticipant_UnlinkedProfile(t *testing.T) {
	svc, users, parts := newTestService()
	ctx := context.Background()

	p := &Participant{ID: uuid.New(), Name: "Walk-in"}
	parts.participants[p.ID] = p

	if err := svc.DeleteParticipant(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(users.users) != 0 {
		t.Error("no user rows should be touched")
	}
}
