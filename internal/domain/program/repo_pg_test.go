package program

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinichq/clinic/internal/platform/db"
)

// recordingConn captures the SQL a repository issues. It stands in for the
// pool via db.WithConn so statements can be checked without a database.
type recordingConn struct {
	sqls []string
}

func (r *recordingConn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	r.sqls = append(r.sqls, sql)
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (r *recordingConn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	r.sqls = append(r.sqls, sql)
	return nil, pgx.ErrNoRows
}

func (r *recordingConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	r.sqls = append(r.sqls, sql)
	return noRow{}
}

type noRow struct{}

func (noRow) Scan(dest ...interface{}) error { return pgx.ErrNoRows }

func TestEnrollmentUpdate_StampsUpdatedAt(t *testing.T) {
	rec := &recordingConn{}
	ctx := db.WithConn(context.Background(), rec)

	now := time.Now()
	repo := NewEnrollmentRepoPG(nil)
	err := repo.Update(ctx, &Enrollment{
		ID: uuid.New(), Status: EnrollmentCompleted, CompletionDate: &now,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(rec.sqls) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(rec.sqls))
	}
	if !strings.Contains(rec.sqls[0], "updated_at=NOW()") {
		t.Errorf("enrollment update must stamp updated_at, got: %s", rec.sqls[0])
	}
}
