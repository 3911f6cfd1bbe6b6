package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ecoloop/farmer/internal/domain/models"
)

// FlockRepository persists flocks. Every read and write is scoped by owner.
type FlockRepository struct {
	db *sqlx.DB
}

// NewFlockRepository builds a FlockRepository over the shared handle.
func NewFlockRepository(db *sqlx.DB) *FlockRepository {
	return &FlockRepository{db: db}
}

// Create inserts a flock.
func (r *FlockRepository) Create(ctx context.Context, f *models.Flock) error {
	query := `
        INSERT INTO flocks (id, user_id, name, breed, initial_count, current_count, hatch_date,
                            expected_slaughter_date, housing_type, status, created_at, updated_at)
        VALUES (:id, :user_id, :name, :breed, :initial_count, :current_count, :hatch_date,
                :expected_slaughter_date, :housing_type, :status, :created_at, :updated_at)
    `
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		return fmt.Errorf("insert flock: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's flocks, newest first.
func (r *FlockRepository) ListByOwner(ctx context.Context, userID string) ([]models.Flock, error) {
	flocks := []models.Flock{}
	query := `SELECT * FROM flocks WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`
	if err := r.db.SelectContext(ctx, &flocks, query, userID); err != nil {
		return nil, fmt.Errorf("list flocks: %w", err)
	}
	return flocks, nil
}

// ListActive returns every active flock across all owners.
func (r *FlockRepository) ListActive(ctx context.Context) ([]models.Flock, error) {
	flocks := []models.Flock{}
	query := `SELECT * FROM flocks WHERE status = 'active' ORDER BY user_id, created_at`
	if err := r.db.SelectContext(ctx, &flocks, query); err != nil {
		return nil, fmt.Errorf("list active flocks: %w", err)
	}
	return flocks, nil
}

// FindOwned returns the flock only when it belongs to userID; nil otherwise.
func (r *FlockRepository) FindOwned(ctx context.Context, id, userID string) (*models.Flock, error) {
	var f models.Flock
	err := r.db.GetContext(ctx, &f, `SELECT * FROM flocks WHERE id = ? AND user_id = ? LIMIT 1`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find flock: %w", err)
	}
	return &f, nil
}

// Exists reports whether a flock with this id is owned by userID.
func (r *FlockRepository) Exists(ctx context.Context, id, userID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM flocks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("check flock ownership: %w", err)
	}
	return n > 0, nil
}

// UpdateStatus moves an owned flock to status. It returns
// models.ErrNotFoundOrForbidden when nothing matched.
func (r *FlockRepository) UpdateStatus(ctx context.Context, id, userID string, status models.FlockStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE flocks SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		status, at, id, userID)
	if err != nil {
		return fmt.Errorf("update flock status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update flock status: %w", err)
	}
	if n == 0 {
		return models.ErrNotFoundOrForbidden
	}
	return nil
}
