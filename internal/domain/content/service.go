package content

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic/internal/platform/apperr"
)

type Service struct {
	articles ArticleRepository
	now      func() time.Time
}

func NewService(articles ArticleRepository) *Service {
	return &Service{articles: articles, now: time.Now}
}

func (s *Service) List(ctx context.Context, f ArticleFilter, limit, offset int) ([]*Article, int, error) {
	return s.articles.List(ctx, f, limit, offset)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Article, error) {
	return s.articles.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, a *Article) (*Article, error) {
	if a.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if a.Content == "" {
		return nil, apperr.Validationf("content is required")
	}
	if a.IsPublished {
		now := s.now()
		a.PublishedDate = &now
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update merges fields. Flipping is_published on stamps the publication
// date once; unpublishing clears it so a later re-publish gets a fresh one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateArticleInput) (*Article, error) {
	a, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, apperr.Validationf("title cannot be empty")
		}
		a.Title = *in.Title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, apperr.Validationf("content cannot be empty")
		}
		a.Content = *in.Content
	}
	if in.Summary != nil {
		a.Summary = in.Summary
	}
	if in.Author != nil {
		a.Author = in.Author
	}
	if in.IsPublished != nil && *in.IsPublished != a.IsPublished {
		if *in.IsPublished {
			now := s.now()
			a.PublishedDate = &now
		} else {
			a.PublishedDate = nil
		}
		a.IsPublished = *in.IsPublished
	}

	if err := s.articles.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.articles.GetByID(ctx, id); err != nil {
		return err
	}
	return s.articles.Delete(ctx, id)
}
