package program

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinichq/clinic/internal/platform/apperr"
	"github.com/clinichq/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func translateErr(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFoundf("%s not found", entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflictf("%s violates a uniqueness constraint", entity)
	}
	return err
}

// =========== Program Repository ===========

type programRepoPG struct{ pool *pgxpool.Pool }

func NewProgramRepoPG(pool *pgxpool.Pool) ProgramRepository { return &programRepoPG{pool: pool} }

func (r *programRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const programCols = `id, name, description, category_id, start_date, end_date,
	location, max_participants, status, created_at, updated_at`

func scanProgram(row pgx.Row) (*HealthProgram, error) {
	var p HealthProgram
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.StartDate,
		&p.EndDate, &p.Location, &p.MaxParticipants, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *programRepoPG) Create(ctx context.Context, p *HealthProgram) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO health_programs (id, name, description, category_id, start_date,
			end_date, location, max_participants, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Description, p.CategoryID, p.StartDate,
		p.EndDate, p.Location, p.MaxParticipants, p.Status)
	return translateErr(err, "health program")
}

func (r *programRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthProgram, error) {
	p, err := scanProgram(r.conn(ctx).QueryRow(ctx, `SELECT `+programCols+` FROM health_programs WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "health program")
	}
	return p, nil
}

func (r *programRepoPG) Update(ctx context.Context, p *HealthProgram) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE health_programs SET name=$2, description=$3, category_id=$4,
			start_date=$5, end_date=$6, location=$7, max_participants=$8,
			status=$9, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.CategoryID, p.StartDate,
		p.EndDate, p.Location, p.MaxParticipants, p.Status)
	return translateErr(err, "health program")
}

func (r *programRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM health_programs WHERE id = $1`, id)
	return translateErr(err, "health program")
}

func (r *programRepoPG) List(ctx context.Context, f ProgramFilter, limit, offset int) ([]*HealthProgram, int, error) {
	query := `SELECT ` + programCols + ` FROM health_programs WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM health_programs WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.CategoryID != nil {
		clause := fmt.Sprintf(` AND category_id = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, *f.CategoryID)
		idx++
	}
	if f.Status != "" {
		clause := fmt.Sprintf(` AND status = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, f.Status)
		idx++
	}
	if f.Search != "" {
		clause := fmt.Sprintf(` AND name ILIKE $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*HealthProgram
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *programRepoPG) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM health_programs WHERE category_id = $1`, categoryID).Scan(&n)
	return n, err
}

// =========== Category Repository ===========

type categoryRepoPG struct{ pool *pgxpool.Pool }

func NewCategoryRepoPG(pool *pgxpool.Pool) CategoryRepository { return &categoryRepoPG{pool: pool} }

func (r *categoryRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const categoryCols = `id, name, description, color, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.IsActive,
		&c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *categoryRepoPG) Create(ctx context.Context, c *Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO program_categories (id, name, description, color, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Name, c.Description, c.Color, c.IsActive)
	return translateErr(err, "program category")
}

func (r *categoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := scanCategory(r.conn(ctx).QueryRow(ctx, `SELECT `+categoryCols+` FROM program_categories WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "program category")
	}
	return c, nil
}

func (r *categoryRepoPG) GetByName(ctx context.Context, name string) (*Category, error) {
	c, err := scanCategory(r.conn(ctx).QueryRow(ctx, `SELECT `+categoryCols+` FROM program_categories WHERE name = $1`, name))
	if err != nil {
		return nil, translateErr(err, "program category")
	}
	return c, nil
}

func (r *categoryRepoPG) Update(ctx context.Context, c *Category) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE program_categories SET name=$2, description=$3, color=$4,
			is_active=$5, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Color, c.IsActive)
	return translateErr(err, "program category")
}

func (r *categoryRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM program_categories WHERE id = $1`, id)
	return translateErr(err, "program category")
}

func (r *categoryRepoPG) List(ctx context.Context, isActive *bool, limit, offset int) ([]*Category, int, error) {
	query := `SELECT ` + categoryCols + ` FROM program_categories WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM program_categories WHERE 1=1`
	var args []interface{}
	idx := 1

	if isActive != nil {
		clause := fmt.Sprintf(` AND is_active = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, *isActive)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// =========== Enrollment Repository ===========

type enrollmentRepoPG struct{ pool *pgxpool.Pool }

func NewEnrollmentRepoPG(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepoPG{pool: pool}
}

func (r *enrollmentRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const enrollmentCols = `id, participant_id, health_program_id, status, enrollment_date, completion_date`

func scanEnrollment(row pgx.Row) (*Enrollment, error) {
	var e Enrollment
	err := row.Scan(&e.ID, &e.ParticipantID, &e.HealthProgramID, &e.Status,
		&e.EnrollmentDate, &e.CompletionDate)
	return &e, err
}

func (r *enrollmentRepoPG) Create(ctx context.Context, e *Enrollment) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO enrollments (id, participant_id, health_program_id,
			status, enrollment_date, completion_date)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.ParticipantID, e.HealthProgramID, e.Status, e.EnrollmentDate, e.CompletionDate)
	return translateErr(err, "enrollment")
}

func (r *enrollmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	e, err := scanEnrollment(r.conn(ctx).QueryRow(ctx, `SELECT `+enrollmentCols+` FROM enrollments WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "enrollment")
	}
	return e, nil
}

func (r *enrollmentRepoPG) GetByParticipantAndProgram(ctx context.Context, participantID, programID uuid.UUID) (*Enrollment, error) {
	e, err := scanEnrollment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+enrollmentCols+` FROM enrollments
		WHERE participant_id = $1 AND health_program_id = $2`, participantID, programID))
	if err != nil {
		return nil, translateErr(err, "enrollment")
	}
	return e, nil
}

func (r *enrollmentRepoPG) Update(ctx context.Context, e *Enrollment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE enrollments SET status=$2, completion_date=$3, updated_at=NOW() WHERE id = $1`,
		e.ID, e.Status, e.CompletionDate)
	return translateErr(err, "enrollment")
}

func (r *enrollmentRepoPG) ListByParticipant(ctx context.Context, participantID uuid.UUID) ([]*EnrollmentWithProgram, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT e.id, e.participant_id, e.health_program_id, e.status,
			e.enrollment_date, e.completion_date, p.name AS program_name
		FROM enrollments e
		JOIN health_programs p ON p.id = e.health_program_id
		WHERE e.participant_id = $1
		ORDER BY e.enrollment_date DESC`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*EnrollmentWithProgram
	for rows.Next() {
		var e EnrollmentWithProgram
		if err := rows.Scan(&e.ID, &e.ParticipantID, &e.HealthProgramID, &e.Status,
			&e.EnrollmentDate, &e.CompletionDate, &e.ProgramName); err != nil {
			return nil, err
		}
		items = append(items, &e)
	}
	return items, rows.Err()
}

func (r *enrollmentRepoPG) ActiveCountsByProgram(ctx context.Context) ([]*ProgramCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT p.id AS program_id, p.name, COUNT(e.id) AS count
		FROM enrollments e
		JOIN health_programs p ON p.id = e.health_program_id
		WHERE e.status = 'active'
			AND p.status = 'active'
			AND (p.end_date IS NULL OR p.end_date >= CURRENT_DATE)
		GROUP BY p.id, p.name
		ORDER BY count DESC, p.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ProgramCount
	for rows.Next() {
		var pc ProgramCount
		if err := rows.Scan(&pc.ProgramID, &pc.Name, &pc.Count); err != nil {
			return nil, err
		}
		items = append(items, &pc)
	}
	return items, rows.Err()
}

// =========== Task Repository ===========

type taskRepoPG struct{ pool *pgxpool.Pool }

func NewTaskRepoPG(pool *pgxpool.Pool) TaskRepository { return &taskRepoPG{pool: pool} }

func (r *taskRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const taskCols = `id, health_program_id, title, description, status, priority,
	completed_at, completed_by, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.HealthProgramID, &t.Title, &t.Description, &t.Status,
		&t.Priority, &t.CompletedAt, &t.CompletedBy, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *taskRepoPG) Create(ctx context.Context, t *Task) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO tasks (id, health_program_id, title, description, status, priority)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.HealthProgramID, t.Title, t.Description, t.Status, t.Priority)
	return translateErr(err, "task")
}

func (r *taskRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := scanTask(r.conn(ctx).QueryRow(ctx, `SELECT `+taskCols+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "task")
	}
	return t, nil
}

func (r *taskRepoPG) Update(ctx context.Context, t *Task) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE tasks SET title=$2, description=$3, status=$4, priority=$5,
			completed_at=$6, completed_by=$7, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.CompletedAt, t.CompletedBy)
	return translateErr(err, "task")
}

func (r *taskRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return translateErr(err, "task")
}

func (r *taskRepoPG) List(ctx context.Context, f TaskFilter, limit, offset int) ([]*Task, int, error) {
	query := `SELECT ` + taskCols + ` FROM tasks WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM tasks WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.HealthProgramID != nil {
		clause := fmt.Sprintf(` AND health_program_id = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, *f.HealthProgramID)
		idx++
	}
	if f.Status != "" {
		clause := fmt.Sprintf(` AND status = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, f.Status)
		idx++
	}
	if f.Priority != "" {
		clause := fmt.Sprintf(` AND priority = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, f.Priority)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY
		CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC,
		created_at DESC
		LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
