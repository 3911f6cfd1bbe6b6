package forum

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/validation"
)

const (
	// DefaultLimit is the page size when the caller does not ask for one.
	DefaultLimit = 50
	maxLimit     = 200
)

// Repository defines forum post storage.
type Repository interface {
	Create(ctx context.Context, p *models.ForumPost) error
	ListRecent(ctx context.Context, limit int) ([]models.ForumPost, error)
}

// PostInput is a new forum post.
type PostInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	Body     string `json:"body" validate:"required"`
	Category string `json:"category" validate:"omitempty,max=50"`
}

// Service serves the public community forum.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the forum.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// List returns the most recent posts. Non-positive limits fall back to the
// default and large ones are capped.
func (s *Service) List(ctx context.Context, limit int) ([]models.ForumPost, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.repo.ListRecent(ctx, limit)
}

// Create publishes a post signed with the author's name.
func (s *Service) Create(ctx context.Context, author models.Identity, in PostInput) (*models.ForumPost, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	category := in.Category
	if category == "" {
		category = "general"
	}

	post := &models.ForumPost{
		ID:         uuid.New().String(),
		UserID:     author.UserID,
		AuthorName: author.Name,
		Title:      in.Title,
		Body:       in.Body,
		Category:   category,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("forum post created", zap.String("post_id", post.ID), zap.String("user_id", author.UserID))
	return post, nil
}
