package program

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic/internal/platform/apperr"
)

type mockProgramRepo struct {
	programs map[uuid.UUID]*HealthProgram
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: map[uuid.UUID]*HealthProgram{}}
}

func (m *mockProgramRepo) Create(ctx context.Context, p *HealthProgram) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.programs[p.ID] = &cp
	return nil
}

func (m *mockProgramRepo) GetByID(ctx context.Context, id uuid.UUID) (*HealthProgram, error) {
	p, ok := m.programs[id]
	if !ok {
		return nil, apperr.NotFoundf("health program not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockProgramRepo) Update(ctx context.Context, p *HealthProgram) error {
	if _, ok := m.programs[p.ID]; !ok {
		return apperr.NotFoundf("health program not found")
	}
	cp := *p
	m.programs[p.ID] = &cp
	return nil
}

func (m *mockProgramRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.programs, id)
	return nil
}

func (m *mockProgramRepo) List(ctx context.Context, f ProgramFilter, limit, offset int) ([]*HealthProgram, int, error) {
	var items []*HealthProgram
	for _, p := range m.programs {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		cp := *p
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (m *mockProgramRepo) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	n := 0
	for _, p := range m.programs {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

type mockCategoryRepo struct {
	categories map[uuid.UUID]*Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: map[uuid.UUID]*Category{}}
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, apperr.NotFoundf("program category not found")
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepo) GetByName(ctx context.Context, name string) (*Category, error) {
	for _, c := range m.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("program category not found")
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return apperr.NotFoundf("program category not found")
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepo) List(ctx context.Context, isActive *bool, limit, offset int) ([]*Category, int, error) {
	var items []*Category
	for _, c := range m.categories {
		cp := *c
		items = append(items, &cp)
	}
	return items, len(items), nil
}

type mockEnrollmentRepo struct {
	enrollments map[uuid.UUID]*Enrollment
	programs    *mockProgramRepo
}

func newMockEnrollmentRepo(programs *mockProgramRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: map[uuid.UUID]*Enrollment{}, programs: programs}
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, e *Enrollment) error {
	for _, x := range m.enrollments {
		if x.ParticipantID == e.ParticipantID && x.HealthProgramID == e.HealthProgramID {
			return apperr.Conflictf("enrollment violates a uniqueness constraint")
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	m.enrollments[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	e, ok := m.enrollments[id]
	if !ok {
		return nil, apperr.NotFoundf("enrollment not found")
	}
	cp := *e
	return &cp, nil
}

func (m *mockEnrollmentRepo) GetByParticipantAndProgram(ctx context.Context, participantID, programID uuid.UUID) (*Enrollment, error) {
	for _, e := range m.enrollments {
		if e.ParticipantID == participantID && e.HealthProgramID == programID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("enrollment not found")
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, e *Enrollment) error {
	if _, ok := m.enrollments[e.ID]; !ok {
		return apperr.NotFoundf("enrollment not found")
	}
	cp := *e
	m.enrollments[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*EnrollmentWithProgram, error) {
	var items []*EnrollmentWithProgram
	for _, e := range m.enrollments {
		if e.ParticipantID != participantID {
			continue
		}
		name := ""
		if p, ok := m.programs.programs[e.HealthProgramID]; ok {
			name = p.Name
		}
		items = append(items, &EnrollmentWithProgram{Enrollment: *e, ProgramName: name})
	}
	return items, nil
}

func (m *mockEnrollmentRepo) ActiveCountsByProgram(ctx context.Context) ([]*ProgramCount, error) {
	counts := map[uuid.UUID]int{}
	today := time.Now().Truncate(24 * time.Hour)
	for _, e := range m.enrollments {
		if e.Status != EnrollmentActive {
			continue
		}
		p, ok := m.programs.programs[e.HealthProgramID]
		if !ok || p.Status != ProgramActive {
			continue
		}
		if p.EndDate != nil && p.EndDate.Before(today) {
			continue
		}
		counts[p.ID]++
	}
	var items []*ProgramCount
	for pid, n := range counts {
		items = append(items, &ProgramCount{ProgramID: pid, Name: m.programs.programs[pid].Name, Count: n})
	}
	return items, nil
}

type mockTaskRepo struct {
	tasks map[uuid.UUID]*Task
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: map[uuid.UUID]*Task{}}
}

func (m *mockTaskRepo) Create(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, apperr.NotFoundf("task not found")
	}
	cp := *t
	return &cp, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, t *Task) error {
	if _, ok := m.tasks[t.ID]; !ok {
		return apperr.NotFoundf("task not found")
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) List(ctx context.Context, f TaskFilter, limit, offset int) ([]*Task, int, error) {
	var items []*Task
	for _, t := range m.tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		cp := *t
		items = append(items, &cp)
	}
	return items, len(items), nil
}

type mockDirectory struct {
	byUser   map[uuid.UUID]uuid.UUID
	existing map[uuid.UUID]bool
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{byUser: map[uuid.UUID]uuid.UUID{}, existing: map[uuid.UUID]bool{}}
}

func (m *mockDirectory) ParticipantIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	pid, ok := m.byUser[userID]
	if !ok {
		return uuid.Nil, apperr.NotFoundf("participant not found")
	}
	return pid, nil
}

func (m *mockDirectory) ParticipantExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.existing[id], nil
}

type testEnv struct {
	svc         *Service
	programs    *mockProgramRepo
	categories  *mockCategoryRepo
	enrollments *mockEnrollmentRepo
	tasks       *mockTaskRepo
	directory   *mockDirectory
}

func newTestEnv() *testEnv {
	programs := newMockProgramRepo()
	categories := newMockCategoryRepo()
	enrollments := newMockEnrollmentRepo(programs)
	tasks := newMockTaskRepo()
	directory := newMockDirectory()
	return &testEnv{
		svc:         NewService(programs, categories, enrollments, tasks, directory),
		programs:    programs,
		categories:  categories,
		enrollments: enrollments,
		tasks:       tasks,
		directory:   directory,
	}
}

func (env *testEnv) seedCategory(t *testing.T) *Category {
	t.Helper()
	c := &Category{ID: uuid.New(), Name: "Wellness", IsActive: true}
	env.categories.categories[c.ID] = c
	return c
}

func (env *testEnv) seedProgram(t *testing.T) *HealthProgram {
	t.Helper()
	c := env.seedCategory(t)
	p := &HealthProgram{
		ID: uuid.New(), Name: "Walking Club", CategoryID: c.ID,
		StartDate: time.Now(), Status: ProgramActive,
	}
	env.programs.programs[p.ID] = p
	return p
}

func TestCreateProgram_RequiredFields(t *testing.T) {
	env := newTestEnv()
	cat := env.seedCategory(t)
	ctx := context.Background()

	_, err := env.svc.CreateProgram(ctx, &HealthProgram{CategoryID: cat.ID, StartDate: time.Now()})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for missing name, got %v", err)
	}
	_, err = env.svc.CreateProgram(ctx, &HealthProgram{Name: "P", StartDate: time.Now()})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for missing category, got %v", err)
	}
}

func TestCreateProgram_DefaultsToActive(t *testing.T) {
	env := newTestEnv()
	cat := env.seedCategory(t)

	p, err := env.svc.CreateProgram(context.Background(), &HealthProgram{
		Name: "P", CategoryID: cat.ID, StartDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if p.Status != ProgramActive {
		t.Errorf("expected active, got %s", p.Status)
	}
}

func TestCreateCategory_Duplicate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.svc.CreateCategory(ctx, &Category{Name: "Wellness"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := env.svc.CreateCategory(ctx, &Category{Name: "Wellness"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict for duplicate name, got %v", err)
	}
}

func TestDeleteCategory_GuardedByReferences(t *testing.T) {
	env := newTestEnv()
	p := env.seedProgram(t)
	ctx := context.Background()

	err := env.svc.DeleteCategory(ctx, p.CategoryID)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error while referenced, got %v", err)
	}

	delete(env.programs.programs, p.ID)
	if err := env.svc.DeleteCategory(ctx, p.CategoryID); err != nil {
		t.Errorf("expected delete to succeed once unreferenced, got %v", err)
	}
}

func TestEnroll_Idempotent(t *testing.T) {
	env := newTestEnv()
	p := env.seedProgram(t)
	pid := uuid.New()
	env.directory.existing[pid] = true
	ctx := context.Background()

	e1, created, err := env.svc.Enroll(ctx, EnrollInput{ParticipantID: pid, HealthProgramID: p.ID})
	if err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if !created {
		t.Error("first enroll should create")
	}
	if e1.Status != EnrollmentActive {
		t.Errorf("expected active, got %s", e1.Status)
	}

	e2, created, err := env.svc.Enroll(ctx, EnrollInput{ParticipantID: pid, HealthProgramID: p.ID})
	if err != nil {
		t.Fatalf("second enroll: %v", err)
	}
	if created {
		t.Error("second enroll should return the existing row")
	}
	if e2.ID != e1.ID {
		t.Error("expected the same enrollment back")
	}
	if len(env.enrollments.enrollments) != 1 {
		t.Errorf("expected 1 enrollment row, got %d", len(env.enrollments.enrollments))
	}
}

func TestEnroll_MissingReferents(t *testing.T) {
	env := newTestEnv()
	p := env.seedProgram(t)
	ctx := context.Background()

	_, _, err := env.svc.Enroll(ctx, EnrollInput{ParticipantID: uuid.New(), HealthProgramID: p.ID})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for missing participant, got %v", err)
	}

	pid := uuid.New()
	env.directory.existing[pid] = true
	_, _, err = env.svc.Enroll(ctx, EnrollInput{ParticipantID: pid, HealthProgramID: uuid.New()})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for missing program, got %v", err)
	}
}

func TestCompleteEnrollment_OwnershipCheck(t *testing.T) {
	env := newTestEnv()
	p := env.seedProgram(t)
	ctx := context.Background()

	ownerUser, ownerPid := uuid.New(), uuid.New()
	strangerUser, strangerPid := uuid.New(), uuid.New()
	env.directory.byUser[ownerUser] = ownerPid
	env.directory.byUser[strangerUser] = strangerPid
	env.directory.existing[ownerPid] = true

	e, _, err := env.svc.Enroll(ctx, EnrollInput{ParticipantID: ownerPid, HealthProgramID: p.ID})
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if _, err := env.svc.CompleteEnrollment(ctx, e.ID, strangerUser); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for foreign enrollment, got %v", err)
	}

	got, err := env.svc.CompleteEnrollment(ctx, e.ID, ownerUser)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != EnrollmentCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.CompletionDate == nil {
		t.Error("expected completion date to be set")
	}
}

func TestProgramCounts_ExcludesInactiveAndExpired(t *testing.T) {
	env := newTestEnv()
	cat := env.seedCategory(t)
	ctx := context.Background()

	active := &HealthProgram{ID: uuid.New(), Name: "Active", CategoryID: cat.ID, StartDate: time.Now(), Status: ProgramActive}
	cancelled := &HealthProgram{ID: uuid.New(), Name: "Cancelled", CategoryID: cat.ID, StartDate: time.Now(), Status: ProgramCancelled}
	past := time.Now().AddDate(0, 0, -10)
	expired := &HealthProgram{ID: uuid.New(), Name: "Expired", CategoryID: cat.ID, StartDate: past, EndDate: &past, Status: ProgramActive}
	for _, p := range []*HealthProgram{active, cancelled, expired} {
		env.programs.programs[p.ID] = p
	}

	for _, p := range []*HealthProgram{active, cancelled, expired} {
		pid := uuid.New()
		env.directory.existing[pid] = true
		if _, _, err := env.svc.Enroll(ctx, EnrollInput{ParticipantID: pid, HealthProgramID: p.ID}); err != nil {
			t.Fatalf("enroll in %s: %v", p.Name, err)
		}
	}

	counts, err := env.svc.ProgramCounts(ctx)
	if err != nil {
		t.Fatalf("ProgramCounts: %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("expected 1 program in counts, got %d", len(counts))
	}
	if counts[0].ProgramID != active.ID || counts[0].Count != 1 {
		t.Errorf("unexpected count row: %+v", counts[0])
	}
}

func TestCreateTask_DefaultsAndValidation(t *testing.T) {
	env := newTestEnv()
	p := env.seedProgram(t)
	ctx := context.Background()

	_, err := env.svc.CreateTask(ctx, &Task{HealthProgramID: p.ID, Title: "T"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error for missing description, got %v", err)
	}

	task, err := env.svc.CreateTask(ctx, &Task{HealthProgramID: p.ID, Title: "T", Description: "do it"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("expected default priority medium, got %s", task.Priority)
	}
	if task.Status != TaskActive {
		t.Errorf("expected active status, got %s", task.Status)
	}
}

func TestUpdateTask_CompletionStamping(t *testing.T) {
	env := newTestEnv()
	p := env.seedProgram(t)
	ctx := context.Background()
	caller := uuid.New()

	task, err := env.svc.CreateTask(ctx, &Task{HealthProgramID: p.ID, Title: "T", Description: "d"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// "completed" is accepted as an alias for inactive.
	completed := "completed"
	got, err := env.svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Status: &completed}, caller)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != TaskInactive {
		t.Errorf("expected inactive, got %s", got.Status)
	}
	if got.CompletedAt == nil || got.CompletedBy == nil || *got.CompletedBy != caller {
		t.Error("expected completion metadata to be stamped with the caller")
	}

	// Reactivation clears the stamp.
	activeAgain := TaskActive
	got, err = env.svc.UpdateTask(ctx, task.ID, UpdateTaskInput{Status: &activeAgain}, caller)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if got.CompletedAt != nil || got.CompletedBy != nil {
		t.Error("expected completion metadata to be cleared")
	}
	if got.Status != TaskActive {
		t.Errorf("expected active, got %s", got.Status)
	}
}

func TestCompleteTask_Idempotent(t *testing.T) {
	env := newTestEnv()
	p := env.seedProgram(t)
	ctx := context.Background()
	caller := uuid.New()

	task, err := env.svc.CreateTask(ctx, &Task{HealthProgramID: p.ID, Title: "T", Description: "d"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := env.svc.CompleteTask(ctx, task.ID, caller)
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}
	second, err := env.svc.CompleteTask(ctx, task.ID, uuid.New())
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if second.CompletedBy == nil || *second.CompletedBy != *first.CompletedBy {
		t.Error("repeat completion must not restamp")
	}
}
