package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// Queryable is the subset of pgx operations shared by pools and transactions.
// Repositories run against whichever the context provides.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ConnFromContext returns the queryable stored in ctx, or nil when the
// caller is not inside WithTx or WithConn.
func ConnFromContext(ctx context.Context) Queryable {
	if q, ok := ctx.Value(txKey).(Queryable); ok {
		return q
	}
	return nil
}

// WithConn returns a context whose repository calls run against q instead of
// the pool. WithTx uses it to join transactions; tests use it to substitute
// a recording connection.
func WithConn(ctx context.Context, q Queryable) context.Context {
	return context.WithValue(ctx, txKey, q)
}

// WithTx runs fn inside a transaction. The transaction is placed on the
// context so that repository calls made from fn join it automatically.
// Any error from fn rolls the transaction back.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(WithConn(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
