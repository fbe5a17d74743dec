package domain

import (
	"context"
	"time"
)

// Post is one community feed entry.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	// ListRecent returns the newest posts first.
	ListRecent(ctx context.Context, limit int) ([]Post, error)
}
