package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ecoloop/farmer/internal/domain/models"
)

// AlertRepository persists user notifications.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository builds an AlertRepository over the shared handle.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create stores a new alert.
func (r *AlertRepository) Create(ctx context.Context, a *models.Alert) error {
	query := `
        INSERT INTO alerts (id, user_id, flock_id, type, title, message, is_read, created_at)
        VALUES (:id, :user_id, :flock_id, :type, :title, :message, :is_read, :created_at)
    `
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's alerts, newest first.
func (r *AlertRepository) ListByOwner(ctx context.Context, userID string) ([]models.Alert, error) {
	alerts := []models.Alert{}
	query := `SELECT * FROM alerts WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`
	if err := r.db.SelectContext(ctx, &alerts, query, userID); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead flags the alert read when it belongs to userID and reports how
// many rows changed. A foreign or unknown id changes nothing.
func (r *AlertRepository) MarkRead(ctx context.Context, id, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE alerts SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("mark alert read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark alert read: %w", err)
	}
	return n, nil
}

// ExistsSince reports whether an alert with this title was already raised for
// the flock at or after since.
func (r *AlertRepository) ExistsSince(ctx context.Context, flockID, title string, since time.Time) (bool, error) {
	var n int
	query := `SELECT COUNT(1) FROM alerts WHERE flock_id = ? AND title = ? AND created_at >= ?`
	if err := r.db.GetContext(ctx, &n, query, flockID, title, since.UTC()); err != nil {
		return false, fmt.Errorf("check existing alert: %w", err)
	}
	return n > 0, nil
}

// CountUnread counts the owner's unread alerts.
func (r *AlertRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM alerts WHERE user_id = ? AND is_read = 0`, userID); err != nil {
		return 0, fmt.Errorf("count unread alerts: %w", err)
	}
	return n, nil
}
