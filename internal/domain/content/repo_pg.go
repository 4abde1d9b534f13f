package content

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

type articleRepoPG struct{ pool *pgxpool.Pool }

func NewArticleRepoPG(pool *pgxpool.Pool) ArticleRepository { return &articleRepoPG{pool: pool} }

func (r *articleRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const articleCols = `id, title, content, summary, author, is_published, published_date, created_at, updated_at`

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Summary, &a.Author,
		&a.IsPublished, &a.PublishedDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articleRepoPG) Create(ctx context.Context, a *Article) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO articles (id, title, content, summary, author, is_published, published_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.Title, a.Content, a.Summary, a.Author, a.IsPublished, a.PublishedDate)
	return translateErr(err, "article")
}

func (r *articleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	a, err := scanArticle(r.conn(ctx).QueryRow(ctx, `SELECT `+articleCols+` FROM articles WHERE id = $1`, id))
	if err != nil {
		return nil, translateErr(err, "article")
	}
	return a, nil
}

func (r *articleRepoPG) Update(ctx context.Context, a *Article) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE articles SET title=$2, content=$3, summary=$4, author=$5,
			is_published=$6, published_date=$7, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Title, a.Content, a.Summary, a.Author, a.IsPublished, a.PublishedDate)
	return translateErr(err, "article")
}

func (r *articleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	return translateErr(err, "article")
}

func (r *articleRepoPG) List(ctx context.Context, f ArticleFilter, limit, offset int) ([]*Article, int, error) {
	query := `SELECT ` + articleCols + ` FROM articles WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM articles WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.Published != nil {
		clause := fmt.Sprintf(" AND is_published = $%d", idx)
		query += clause
		countQuery += clause
		args = append(args, *f.Published)
		idx++
	}
	if f.Search != "" {
		clause := fmt.Sprintf(" AND (title ILIKE $%d OR summary ILIKE $%d)", idx, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, translateErr(err, "article")
	}

	if f.Alphabetical {
		query += ` ORDER BY title ASC`
	} else {
		query += ` ORDER BY created_at DESC`
	}
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, translateErr(err, "article")
	}
	defer rows.Close()

	var items []*Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
