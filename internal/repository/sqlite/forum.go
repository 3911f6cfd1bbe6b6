package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecoloop/farmer/internal/domain/models"
)

// ForumRepository persists community posts.
type ForumRepository struct {
	db *sqlx.DB
}

// NewForumRepository builds a ForumRepository over the shared handle.
func NewForumRepository(db *sqlx.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

// Create stores a post.
func (r *ForumRepository) Create(ctx context.Context, p *models.ForumPost) error {
	query := `
        INSERT INTO forum_posts (id, user_id, author_name, title, body, category, created_at)
        VALUES (:id, :user_id, :author_name, :title, :body, :category, :created_at)
    `
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("insert forum post: %w", err)
	}
	return nil
}

// ListRecent returns up to limit posts, newest first.
func (r *ForumRepository) ListRecent(ctx context.Context, limit int) ([]models.ForumPost, error) {
	posts := []models.ForumPost{}
	query := `SELECT * FROM forum_posts ORDER BY created_at DESC, rowid DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("list forum posts: %w", err)
	}
	return posts, nil
}
