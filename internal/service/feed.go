package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okonek/traintrack/internal/domain"
)

const (
	defaultFeedLimit = 50
	maxPostLength    = 2000
)

// FeedService manages the community feed.
type FeedService struct {
	posts domain.PostRepository
}

// NewFeedService creates a new FeedService.
func NewFeedService(posts domain.PostRepository) *FeedService {
	return &FeedService{posts: posts}
}

// CreatePost publishes a new feed entry for the author.
func (s *FeedService) CreatePost(ctx context.Context, authorID int64, body string) (*domain.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: post body is empty", domain.ErrInvalidInput)
	}
	if len(body) > maxPostLength {
		return nil, fmt.Errorf("%w: post body exceeds %d characters", domain.ErrInvalidInput, maxPostLength)
	}

	post := &domain.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// ListRecent returns the newest posts. limit <= 0 falls back to the
// default.
func (s *FeedService) ListRecent(ctx context.Context, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	return s.posts.ListRecent(ctx, limit)
}
