package program

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic/internal/platform/apperr"
)

// ParticipantDirectory resolves login accounts and participant profiles
// owned by the identity domain.
type ParticipantDirectory interface {
	ParticipantIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	ParticipantExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	programs     ProgramRepository
	categories   CategoryRepository
	enrollments  EnrollmentRepository
	tasks        TaskRepository
	participants ParticipantDirectory
	now          func() time.Time
}

func NewService(programs ProgramRepository, categories CategoryRepository,
	enrollments EnrollmentRepository, tasks TaskRepository,
	participants ParticipantDirectory) *Service {
	return &Service{
		programs:     programs,
		categories:   categories,
		enrollments:  enrollments,
		tasks:        tasks,
		participants: participants,
		now:          time.Now,
	}
}

// -- Programs --

func (s *Service) ListPrograms(ctx context.Context, f ProgramFilter, limit, offset int) ([]*HealthProgram, int, error) {
	return s.programs.List(ctx, f, limit, offset)
}

func (s *Service) GetProgram(ctx context.Context, id uuid.UUID) (*HealthProgram, error) {
	return s.programs.GetByID(ctx, id)
}

func (s *Service) CreateProgram(ctx context.Context, p *HealthProgram) (*HealthProgram, error) {
	if p.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if p.CategoryID == uuid.Nil {
		return nil, apperr.Validationf("category_id is required")
	}
	if p.StartDate.IsZero() {
		return nil, apperr.Validationf("start_date is required")
	}
	if _, err := s.categories.GetByID(ctx, p.CategoryID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validationf("unknown category_id")
		}
		return nil, err
	}
	if p.Status == "" {
		p.Status = ProgramActive
	}
	if !validProgramStatuses[p.Status] {
		return nil, apperr.Validationf("invalid status: %s", p.Status)
	}
	if err := s.programs.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProgram(ctx context.Context, id uuid.UUID, in UpdateProgramInput) (*HealthProgram, error) {
	p, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		p.Name = *in.Name
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validationf("unknown category_id")
			}
			return nil, err
		}
		p.CategoryID = *in.CategoryID
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = in.EndDate
	}
	if in.Location != nil {
		p.Location = in.Location
	}
	if in.MaxParticipants != nil {
		p.MaxParticipants = in.MaxParticipants
	}
	if in.Status != nil {
		if !validProgramStatuses[*in.Status] {
			return nil, apperr.Validationf("invalid status: %s", *in.Status)
		}
		p.Status = *in.Status
	}

	if err := s.programs.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	if _, err := s.programs.GetByID(ctx, id); err != nil {
		return err
	}
	return s.programs.Delete(ctx, id)
}

// -- Categories --

func (s *Service) ListCategories(ctx context.Context, isActive *bool, limit, offset int) ([]*Category, int, error) {
	return s.categories.List(ctx, isActive, limit, offset)
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	if c.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if _, err := s.categories.GetByName(ctx, c.Name); err == nil {
		return nil, apperr.Conflictf("category %q already exists", c.Name)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	c.IsActive = true
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, in UpdateCategoryInput) (*Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != c.Name {
		if *in.Name == "" {
			return nil, apperr.Validationf("name cannot be empty")
		}
		if _, err := s.categories.GetByName(ctx, *in.Name); err == nil {
			return nil, apperr.Conflictf("category %q already exists", *in.Name)
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.Color != nil {
		c.Color = in.Color
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory refuses while any program still references the category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.programs.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Validationf("cannot delete category: %d programs reference it", n)
	}
	return s.categories.Delete(ctx, id)
}

// -- Enrollments --

// Enroll adds the participant to the program. Enrolling twice is not an
// error: the existing enrollment is returned with created=false.
func (s *Service) Enroll(ctx context.Context, in EnrollInput) (*Enrollment, bool, error) {
	if in.ParticipantID == uuid.Nil || in.HealthProgramID == uuid.Nil {
		return nil, false, apperr.Validationf("participant_id and health_program_id are required")
	}
	if _, err := s.programs.GetByID(ctx, in.HealthProgramID); err != nil {
		return nil, false, err
	}
	ok, err := s.participants.ParticipantExists(ctx, in.ParticipantID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, apperr.NotFoundf("participant not found")
	}

	if existing, err := s.enrollments.GetByParticipantAndProgram(ctx, in.ParticipantID, in.HealthProgramID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	e := &Enrollment{
		ParticipantID:   in.ParticipantID,
		HealthProgramID: in.HealthProgramID,
		Status:          EnrollmentActive,
		EnrollmentDate:  s.now(),
	}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// CompleteEnrollment marks the caller's own enrollment completed. Foreign
// enrollments read as missing.
func (s *Service) CompleteEnrollment(ctx context.Context, enrollmentID, userID uuid.UUID) (*Enrollment, error) {
	pid, err := s.participants.ParticipantIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	e, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e.ParticipantID != pid {
		return nil, apperr.NotFoundf("enrollment not found")
	}

	now := s.now()
	e.Status = EnrollmentCompleted
	e.CompletionDate = &now
	if err := s.enrollments.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) MyEnrollments(ctx context.Context, userID uuid.UUID) ([]*EnrollmentWithProgram, error) {
	pid, err := s.participants.ParticipantIDForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrollments.ListByParticipant(ctx, pid)
}

func (s *Service) ProgramCounts(ctx context.Context) ([]*ProgramCount, error) {
	return s.enrollments.ActiveCountsByProgram(ctx)
}

// -- Tasks --

func (s *Service) ListTasks(ctx context.Context, f TaskFilter, limit, offset int) ([]*Task, int, error) {
	return s.tasks.List(ctx, f, limit, offset)
}

func (s *Service) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *Service) CreateTask(ctx context.Context, t *Task) (*Task, error) {
	if t.HealthProgramID == uuid.Nil {
		return nil, apperr.Validationf("health_program_id is required")
	}
	if t.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if t.Description == "" {
		return nil, apperr.Validationf("description is required")
	}
	if _, err := s.programs.GetByID(ctx, t.HealthProgramID); err != nil {
		return nil, err
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if !validTaskPriorities[t.Priority] {
		return nil, apperr.Validationf("invalid priority: %s", t.Priority)
	}
	t.Status = TaskActive
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// normalizeTaskStatus maps the "completed" alias clients send onto the
// stored inactive status.
func normalizeTaskStatus(status string) (string, bool) {
	switch status {
	case TaskActive:
		return TaskActive, true
	case TaskInactive, "completed":
		return TaskInactive, true
	}
	return "", false
}

// UpdateTask merges fields. Moving a task to inactive stamps who completed
// it and when; moving it back to active clears both.
func (s *Service) UpdateTask(ctx context.Context, id uuid.UUID, in UpdateTaskInput, callerID uuid.UUID) (*Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, apperr.Validationf("title cannot be empty")
		}
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		if !validTaskPriorities[*in.Priority] {
			return nil, apperr.Validationf("invalid priority: %s", *in.Priority)
		}
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		next, ok := normalizeTaskStatus(*in.Status)
		if !ok {
			return nil, apperr.Validationf("invalid status: %s", *in.Status)
		}
		if next != t.Status {
			if next == TaskInactive {
				now := s.now()
				t.CompletedAt = &now
				t.CompletedBy = &callerID
			} else {
				t.CompletedAt = nil
				t.CompletedBy = nil
			}
			t.Status = next
		}
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// CompleteTask is the convenience completion endpoint's backend. Completing
// an already-inactive task changes nothing.
func (s *Service) CompleteTask(ctx context.Context, id, callerID uuid.UUID) (*Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == TaskInactive {
		return t, nil
	}
	now := s.now()
	t.Status = TaskInactive
	t.CompletedAt = &now
	t.CompletedBy = &callerID
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}
