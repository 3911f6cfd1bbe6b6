package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecoloop/farmer/internal/domain/models"
)

// HealthRepository persists treatments given to flocks.
type HealthRepository struct {
	db *sqlx.DB
}

// NewHealthRepository builds a HealthRepository over the shared handle.
func NewHealthRepository(db *sqlx.DB) *HealthRepository {
	return &HealthRepository{db: db}
}

// Create stores a health record.
func (r *HealthRepository) Create(ctx context.Context, h *models.HealthRecord) error {
	query := `
        INSERT INTO health_records (id, flock_id, treatment, treatment_type, administered_on, notes, created_at)
        VALUES (:id, :flock_id, :treatment, :treatment_type, :administered_on, :notes, :created_at)
    `
	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		return fmt.Errorf("insert health record: %w", err)
	}
	return nil
}

// ListByFlock returns a flock's treatments, most recently administered first.
func (r *HealthRepository) ListByFlock(ctx context.Context, flockID string) ([]models.HealthRecord, error) {
	records := []models.HealthRecord{}
	query := `SELECT * FROM health_records WHERE flock_id = ? ORDER BY administered_on DESC, created_at DESC`
	if err := r.db.SelectContext(ctx, &records, query, flockID); err != nil {
		return nil, fmt.Errorf("list health records: %w", err)
	}
	return records, nil
}
