package directory

import (
	"context"
	"encoding/json"
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

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const doctorCols = `id, name, specialization_id, email, phone, schedule, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var schedule []byte
	err := row.Scan(&d.ID, &d.Name, &d.SpecializationID, &d.Email, &d.Phone,
		&schedule, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &d.Schedule); err != nil {
			return nil, fmt.Errorf("decode doctor schedule: %w", err)
		}
	}
	return &d, nil
}

func marshalSchedule(days []string) ([]byte, error) {
	if days == nil {
		days = []string{}
	}
	return json.Marshal(days)
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	schedule, err := marshalSchedule(d.Schedule)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO doctors (id, name, specialization_id, email, phone, schedule)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.Name, d.SpecializationID, d.Email, d.Phone, schedule)
	return translateErr(err, "doctor")
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "doctor")
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	schedule, err := marshalSchedule(d.Schedule)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET name=$2, specialization_id=$3, email=$4, phone=$5,
			schedule=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.SpecializationID, d.Email, d.Phone, schedule)
	return translateErr(err, "doctor")
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	return translateErr(err, "doctor")
}

func (r *doctorRepoPG) List(ctx context.Context, f DoctorFilter, limit, offset int) ([]*Doctor, int, error) {
	query := `SELECT ` + doctorCols + ` FROM doctors WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM doctors WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.SpecializationID != nil {
		clause := fmt.Sprintf(` AND specialization_id = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, *f.SpecializationID)
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

	order := ` ORDER BY created_at DESC`
	if f.Alphabetical {
		order = ` ORDER BY name ASC`
	}
	query += order + fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// =========== Specialization Repository ===========

type specializationRepoPG struct{ pool *pgxpool.Pool }

func NewSpecializationRepoPG(pool *pgxpool.Pool) SpecializationRepository {
	return &specializationRepoPG{pool: pool}
}

func (r *specializationRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const specializationCols = `id, name, is_active, created_at, updated_at`

func scanSpecialization(row pgx.Row) (*Specialization, error) {
	var s Specialization
	err := row.Scan(&s.ID, &s.Name, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *specializationRepoPG) Create(ctx context.Context, s *Specialization) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO specializations (id, name, is_active) VALUES ($1,$2,$3)`,
		s.ID, s.Name, s.IsActive)
	return translateErr(err, "specialization")
}

func (r *specializationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Specialization, error) {
	s, err := scanSpecialization(r.conn(ctx).QueryRow(ctx, `SELECT `+specializationCols+` FROM specializations WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "specialization")
	}
	return s, nil
}

func (r *specializationRepoPG) GetByName(ctx context.Context, name string) (*Specialization, error) {
	s, err := scanSpecialization(r.conn(ctx).QueryRow(ctx, `SELECT `+specializationCols+` FROM specializations WHERE name = $1`, name))
	if err != nil {
		return nil, translateErr(err, "specialization")
	}
	return s, nil
}

func (r *specializationRepoPG) Update(ctx context.Context, s *Specialization) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE specializations SET name=$2, is_active=$3, updated_at=NOW() WHERE id = $1`,
		s.ID, s.Name, s.IsActive)
	return translateErr(err, "specialization")
}

func (r *specializationRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM specializations WHERE id = $1`, id)
	return translateErr(err, "specialization")
}

func (r *specializationRepoPG) List(ctx context.Context, isActive *bool, limit, offset int) ([]*Specialization, int, error) {
	query := `SELECT ` + specializationCols + ` FROM specializations WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM specializations WHERE 1=1`
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

	var items []*Specialization
	for rows.Next() {
		s, err := scanSpecialization(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// =========== Insurance Repository ===========

type insuranceRepoPG struct{ pool *pgxpool.Pool }

func NewInsuranceRepoPG(pool *pgxpool.Pool) InsuranceRepository {
	return &insuranceRepoPG{pool: pool}
}

func (r *insuranceRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const insuranceCols = `id, name, description, coverage, is_active, created_at, updated_at`

func scanInsurance(row pgx.Row) (*Insurance, error) {
	var i Insurance
	err := row.Scan(&i.ID, &i.Name, &i.Description, &i.Coverage, &i.IsActive,
		&i.CreatedAt, &i.UpdatedAt)
	return &i, err
}

func (r *insuranceRepoPG) Create(ctx context.Context, i *Insurance) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurances (id, name, description, coverage, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		i.ID, i.Name, i.Description, i.Coverage, i.IsActive)
	return translateErr(err, "insurance")
}

func (r *insuranceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Insurance, error) {
	i, err := scanInsurance(r.conn(ctx).QueryRow(ctx, `SELECT `+insuranceCols+` FROM insurances WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "insurance")
	}
	return i, nil
}

func (r *insuranceRepoPG) GetByName(ctx context.Context, name string) (*Insurance, error) {
	i, err := scanInsurance(r.conn(ctx).QueryRow(ctx, `SELECT `+insuranceCols+` FROM insurances WHERE name = $1`, name))
	if err != nil {
		return nil, translateErr(err, "insurance")
	}
	return i, nil
}

func (r *insuranceRepoPG) Update(ctx context.Context, i *Insurance) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurances SET name=$2, description=$3, coverage=$4, is_active=$5,
			updated_at=NOW()
		WHERE id = $1`,
		i.ID, i.Name, i.Description, i.Coverage, i.IsActive)
	return translateErr(err, "insurance")
}

func (r *insuranceRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM insurances WHERE id = $1`, id)
	return translateErr(err, "insurance")
}

func (r *insuranceRepoPG) List(ctx context.Context, isActive *bool, limit, offset int) ([]*Insurance, int, error) {
	query := `SELECT ` + insuranceCols + ` FROM insurances WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM insurances WHERE 1=1`
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

	var items []*Insurance
	for rows.Next() {
		i, err := scanInsurance(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}
