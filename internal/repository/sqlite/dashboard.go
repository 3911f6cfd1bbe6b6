package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DashboardRepository runs the scalar aggregates behind the dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository builds a DashboardRepository over the shared handle.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// ActiveFlockCount counts the owner's active flocks.
func (r *DashboardRepository) ActiveFlockCount(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM flocks WHERE user_id = ? AND status = 'active'`, userID); err != nil {
		return 0, fmt.Errorf("count active flocks: %w", err)
	}
	return n, nil
}

// LiveBirdCount sums current_count over the owner's active flocks.
func (r *DashboardRepository) LiveBirdCount(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COALESCE(SUM(current_count), 0) FROM flocks WHERE user_id = ? AND status = 'active'`, userID); err != nil {
		return 0, fmt.Errorf("sum live birds: %w", err)
	}
	return n, nil
}

// UnreadAlertCount counts the owner's unread alerts.
func (r *DashboardRepository) UnreadAlertCount(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM alerts WHERE user_id = ? AND is_read = 0`, userID); err != nil {
		return 0, fmt.Errorf("count unread alerts: %w", err)
	}
	return n, nil
}
