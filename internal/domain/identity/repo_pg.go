package identity

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

// translateErr maps pgx-level failures onto the shared error taxonomy so the
// service layer never leaks SQLSTATE details.
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

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const userCols = `id, username, email, full_name, password_hash, role, is_active,
	last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, username, email, full_name, password_hash, role, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.Role, u.IsActive)
	return translateErr(err, "user")
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "user")
	}
	return u, nil
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username))
	if err != nil {
		return nil, translateErr(err, "user")
	}
	return u, nil
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, translateErr(err, "user")
	}
	return u, nil
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET username=$2, email=$3, full_name=$4, password_hash=$5,
			role=$6, is_active=$7, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.Role, u.IsActive)
	return translateErr(err, "user")
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return translateErr(err, "user")
}

func (r *userRepoPG) List(ctx context.Context, f UserFilter, limit, offset int) ([]*User, int, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM users WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Role != nil {
		clause := fmt.Sprintf(` AND role = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, *f.Role)
		idx++
	}
	if f.IsActive != nil {
		clause := fmt.Sprintf(` AND is_active = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, *f.IsActive)
		idx++
	}
	if f.Search != "" {
		clause := fmt.Sprintf(` AND (username ILIKE $%d OR full_name ILIKE $%d OR email ILIKE $%d)`, idx, idx, idx)
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

	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *userRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *userRepoPG) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n)
	return n, err
}

func (r *userRepoPG) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

// =========== Participant Repository ===========

type participantRepoPG struct{ pool *pgxpool.Pool }

func NewParticipantRepoPG(pool *pgxpool.Pool) ParticipantRepository {
	return &participantRepoPG{pool: pool}
}

func (r *participantRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const participantCols = `id, user_id, name, email, phone, date_of_birth, address,
	identity_number, insurance_id, insurance_number, created_at, updated_at`

func scanParticipant(row pgx.Row) (*Participant, error) {
	var p Participant
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.DateOfBirth,
		&p.Address, &p.IdentityNumber, &p.InsuranceID, &p.InsuranceNumber,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *participantRepoPG) Create(ctx context.Context, p *Participant) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO participants (id, user_id, name, email, phone, date_of_birth,
			address, identity_number, insurance_id, insurance_number)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.UserID, p.Name, p.Email, p.Phone, p.DateOfBirth,
		p.Address, p.IdentityNumber, p.InsuranceID, p.InsuranceNumber)
	return translateErr(err, "participant")
}

func (r *participantRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Participant, error) {
	p, err := scanParticipant(r.conn(ctx).QueryRow(ctx, `SELECT `+participantCols+` FROM participants WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "participant")
	}
	return p, nil
}

func (r *participantRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Participant, error) {
	p, err := scanParticipant(r.conn(ctx).QueryRow(ctx, `SELECT `+participantCols+` FROM participants WHERE user_id = $1`, userID))
	if err != nil {
		return nil, translateErr(err, "participant")
	}
	return p, nil
}

func (r *participantRepoPG) GetByPhone(ctx context.Context, phone string) (*Participant, error) {
	p, err := scanParticipant(r.conn(ctx).QueryRow(ctx, `SELECT `+participantCols+` FROM participants WHERE phone = $1`, phone))
	if err != nil {
		return nil, translateErr(err, "participant")
	}
	return p, nil
}

func (r *participantRepoPG) GetByIdentityNumber(ctx context.Context, identityNumber string) (*Participant, error) {
	p, err := scanParticipant(r.conn(ctx).QueryRow(ctx, `SELECT `+participantCols+` FROM participants WHERE identity_number = $1`, identityNumber))
	if err != nil {
		return nil, translateErr(err, "participant")
	}
	return p, nil
}

func (r *participantRepoPG) Update(ctx context.Context, p *Participant) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE participants SET name=$2, email=$3, phone=$4, date_of_birth=$5,
			address=$6, identity_number=$7, insurance_id=$8, insurance_number=$9,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Email, p.Phone, p.DateOfBirth,
		p.Address, p.IdentityNumber, p.InsuranceID, p.InsuranceNumber)
	return translateErr(err, "participant")
}

func (r *participantRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM participants WHERE id = $1`, id)
	return translateErr(err, "participant")
}

func (r *participantRepoPG) List(ctx context.Context, f ParticipantFilter, limit, offset int) ([]*Participant, int, error) {
	query := `SELECT ` + participantCols + ` FROM participants WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM participants WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.InsuranceID != nil {
		clause := fmt.Sprintf(` AND insurance_id = $%d`, idx)
		query += clause
		countQuery += clause
		args = append(args, *f.InsuranceID)
		idx++
	}
	if f.Search != "" {
		clause := fmt.Sprintf(` AND (name ILIKE $%d OR identity_number ILIKE $%d)`, idx, idx)
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

	var items []*Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
