package content

import (
	"time"

	"github.com/google/uuid"
)

// Article is a health-education piece published on the clinic site.
type Article struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Title         string     `db:"title" json:"title"`
	Content       string     `db:"content" json:"content"`
	Summary       *string    `db:"summary" json:"summary,omitempty"`
	Author        *string    `db:"author" json:"author,omitempty"`
	IsPublished   bool       `db:"is_published" json:"is_published"`
	PublishedDate *time.Time `db:"published_date" json:"published_date,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// UpdateArticleInput carries a partial update. Nil fields are left alone.
type UpdateArticleInput struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Summary     *string `json:"summary"`
	Author      *string `json:"author"`
	IsPublished *bool   `json:"is_published"`
}

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Published    *bool
	Search       string
	Alphabetical bool
}
