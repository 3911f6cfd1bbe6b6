package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ecoloop/farmer/internal/domain/models"
)

// ProductionRepository persists daily production records.
type ProductionRepository struct {
	db *sqlx.DB
}

// NewProductionRepository builds a ProductionRepository over the shared handle.
func NewProductionRepository(db *sqlx.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

// UpsertWithMortality writes the record for (flock, date), replacing any
// existing one, and subtracts rec.Mortality from the flock's live count.
// The subtraction happens on every call, including replacements, and the
// count is not clamped at zero.
func (r *ProductionRepository) UpsertWithMortality(ctx context.Context, rec *models.ProductionRecord, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin production upsert: %w", err)
	}
	defer tx.Rollback()

	upsertQuery := `
        INSERT INTO production_records (id, flock_id, record_date, mortality, avg_weight, feed_consumed,
                                        water_consumed, temperature, humidity, notes, created_at)
        VALUES (:id, :flock_id, :record_date, :mortality, :avg_weight, :feed_consumed,
                :water_consumed, :temperature, :humidity, :notes, :created_at)
        ON CONFLICT (flock_id, record_date)
        DO UPDATE SET
            mortality = excluded.mortality,
            avg_weight = excluded.avg_weight,
            feed_consumed = excluded.feed_consumed,
            water_consumed = excluded.water_consumed,
            temperature = excluded.temperature,
            humidity = excluded.humidity,
            notes = excluded.notes
    `
	if _, err := tx.NamedExecContext(ctx, upsertQuery, rec); err != nil {
		return fmt.Errorf("upsert production record: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE flocks SET current_count = current_count - ?, updated_at = ? WHERE id = ?`,
		rec.Mortality, at, rec.FlockID); err != nil {
		return fmt.Errorf("apply mortality: %w", err)
	}

	return tx.Commit()
}

// FindByDate returns the stored record for (flock, date), or nil.
func (r *ProductionRepository) FindByDate(ctx context.Context, flockID, date string) (*models.ProductionRecord, error) {
	records := []models.ProductionRecord{}
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM production_records WHERE flock_id = ? AND record_date = ? LIMIT 1`, flockID, date)
	if err != nil {
		return nil, fmt.Errorf("find production record: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// ListByFlock returns a flock's records, newest date first.
func (r *ProductionRepository) ListByFlock(ctx context.Context, flockID string) ([]models.ProductionRecord, error) {
	records := []models.ProductionRecord{}
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM production_records WHERE flock_id = ? ORDER BY record_date DESC`, flockID)
	if err != nil {
		return nil, fmt.Errorf("list production records: %w", err)
	}
	return records, nil
}

// DailyTotals sums mortality and feed for every flock of userID on date.
func (r *ProductionRepository) DailyTotals(ctx context.Context, userID, date string) (mortality int, feed float64, err error) {
	row := struct {
		Mortality int     `db:"mortality"`
		Feed      float64 `db:"feed"`
	}{}
	query := `
        SELECT COALESCE(SUM(p.mortality), 0) AS mortality,
               COALESCE(SUM(p.feed_consumed), 0) AS feed
        FROM production_records p
        JOIN flocks f ON f.id = p.flock_id
        WHERE f.user_id = ? AND p.record_date = ?
    `
	if err := r.db.GetContext(ctx, &row, query, userID, date); err != nil {
		return 0, 0, fmt.Errorf("sum daily production: %w", err)
	}
	return row.Mortality, row.Feed, nil
}
