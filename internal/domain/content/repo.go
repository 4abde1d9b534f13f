package content

import (
	"context"

	"github.com/google/uuid"
)

type ArticleRepository interface {
	Create(ctx context.Context, a *Article) error
	GetByID(ctx context.Context, id uuid.UUID) (*Article, error)
	Update(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f ArticleFilter, limit, offset int) ([]*Article, int, error)
}
