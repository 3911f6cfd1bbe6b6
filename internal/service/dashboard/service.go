package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/service/finance"
)

// profitWindowDays is the trailing window of the monthly profit figure.
const profitWindowDays = 30

// Counter runs the scalar aggregates of the summary.
type Counter interface {
	ActiveFlockCount(ctx context.Context, userID string) (int, error)
	LiveBirdCount(ctx context.Context, userID string) (int, error)
	UnreadAlertCount(ctx context.Context, userID string) (int, error)
}

// Ledger totals money over a date window.
type Ledger interface {
	Totals(ctx context.Context, userID, from, to string) (models.FinanceTotals, error)
}

// Service builds the dashboard overview.
type Service struct {
	counts Counter
	ledger Ledger
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the dashboard aggregator.
func NewService(counts Counter, ledger Ledger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{counts: counts, ledger: ledger, logger: logger, now: time.Now}
}

// Summary runs the four owner-scoped aggregates concurrently. If any of them
// fails the whole summary fails; a field is never reported as zero because
// its query errored.
func (s *Service) Summary(ctx context.Context, owner string) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	from, to := finance.TrailingWindow(s.now(), profitWindowDays)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.counts.ActiveFlockCount(gctx, owner)
		summary.ActiveFlocks = n
		return err
	})
	g.Go(func() error {
		n, err := s.counts.LiveBirdCount(gctx, owner)
		summary.TotalBirds = n
		return err
	})
	g.Go(func() error {
		n, err := s.counts.UnreadAlertCount(gctx, owner)
		summary.UnreadAlerts = n
		return err
	})
	g.Go(func() error {
		totals, err := s.ledger.Totals(gctx, owner, from, to)
		summary.MonthlyProfit = totals.Net()
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard summary failed", zap.String("user_id", owner), zap.Error(err))
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &summary, nil
}
