package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) count(ctx context.Context, table string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

func (r *repoPG) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, "users")
}

func (r *repoPG) CountDoctors(ctx context.Context) (int, error) {
	return r.count(ctx, "doctors")
}

func (r *repoPG) CountParticipants(ctx context.Context) (int, error) {
	return r.count(ctx, "participants")
}

func (r *repoPG) CountAppointments(ctx context.Context) (int, error) {
	return r.count(ctx, "appointments")
}

func (r *repoPG) CountPrograms(ctx context.Context) (int, error) {
	return r.count(ctx, "health_programs")
}
