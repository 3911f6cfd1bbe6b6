package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/service/alerts"
)

const (
	titleHighMortality     = "High mortality"
	titleSlaughterUpcoming = "Slaughter date approaching"
)

// FlockSource lists the flocks the alert scan visits.
type FlockSource interface {
	ListActive(ctx context.Context) ([]models.Flock, error)
}

// ProductionSource reads production records.
type ProductionSource interface {
	FindByDate(ctx context.Context, flockID, date string) (*models.ProductionRecord, error)
	DailyTotals(ctx context.Context, userID, date string) (int, float64, error)
}

// AlertSink raises alerts and checks for recent duplicates.
type AlertSink interface {
	RaisedSince(ctx context.Context, flockID, title string, since time.Time) (bool, error)
	Raise(ctx context.Context, in alerts.RaiseInput) (*models.Alert, error)
}

// UserSource lists the users that get a daily summary.
type UserSource interface {
	ListWithActiveFlocks(ctx context.Context) ([]models.User, error)
}

// HerdCounter counts flocks and live birds per user.
type HerdCounter interface {
	ActiveFlockCount(ctx context.Context, userID string) (int, error)
	LiveBirdCount(ctx context.Context, userID string) (int, error)
}

// Ledger totals money over a date window.
type Ledger interface {
	Totals(ctx context.Context, userID, from, to string) (models.FinanceTotals, error)
}

// ReportSink receives daily summaries.
type ReportSink interface {
	SaveDailySummary(ctx context.Context, summary models.DailySummary) error
}

// Sources groups the read and write paths the jobs rely on.
type Sources struct {
	Flocks     FlockSource
	Production ProductionSource
	Alerts     AlertSink
	Users      UserSource
	Herd       HerdCounter
	Ledger     Ledger
}

// Options tunes the alert thresholds.
type Options struct {
	MortalityAlertPercent float64
	SlaughterLeadDays     int
	Location              *time.Location
}

// Service generates alerts and daily summaries for every farm.
type Service struct {
	src    Sources
	sinks  []ReportSink
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(src Sources, sinks []ReportSink, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{src: src, sinks: sinks, opts: opts, logger: logger, now: time.Now}
}

// ScanAlerts checks every active flock as of now and raises the alerts that
// are due. An alert already raised today for the same flock and title is not
// raised again. It returns how many alerts were raised.
func (s *Service) ScanAlerts(ctx context.Context, now time.Time) (int, error) {
	local := now.In(s.opts.Location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.opts.Location)
	yesterday := dayStart.AddDate(0, 0, -1).Format(models.DateLayout)

	flocks, err := s.src.Flocks.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active flocks: %w", err)
	}

	raised := 0
	var errs []error
	for i := range flocks {
		flock := &flocks[i]
		for _, candidate := range s.candidates(ctx, flock, yesterday, dayStart) {
			ok, err := s.raiseOnce(ctx, flock, candidate, dayStart)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if ok {
				raised++
			}
		}
	}

	s.logger.Info("alert scan finished",
		zap.Int("flocks", len(flocks)),
		zap.Int("raised", raised),
		zap.Int("errors", len(errs)))
	return raised, errors.Join(errs...)
}

func (s *Service) candidates(ctx context.Context, flock *models.Flock, yesterday string, today time.Time) []alerts.RaiseInput {
	var out []alerts.RaiseInput
	flockID := flock.ID

	rec, err := s.src.Production.FindByDate(ctx, flock.ID, yesterday)
	if err != nil {
		s.logger.Warn("skip mortality check", zap.String("flock_id", flock.ID), zap.Error(err))
	} else if rec != nil && rec.Mortality > 0 {
		if rate, high := s.mortalityRate(rec.Mortality, flock.CurrentCount); high {
			out = append(out, alerts.RaiseInput{
				UserID:  flock.UserID,
				FlockID: &flockID,
				Type:    models.AlertWarning,
				Title:   titleHighMortality,
				Message: fmt.Sprintf("%s lost %d birds on %s (%.1f%% of the %d alive).",
					flock.Name, rec.Mortality, yesterday, rate, flock.CurrentCount),
			})
		}
	}

	if flock.ExpectedSlaughterDate != nil {
		due, err := time.ParseInLocation(models.DateLayout, *flock.ExpectedSlaughterDate, s.opts.Location)
		if err == nil {
			days := int(math.Round(due.Sub(today).Hours() / 24))
			if days >= 0 && days <= s.opts.SlaughterLeadDays {
				out = append(out, alerts.RaiseInput{
					UserID:  flock.UserID,
					FlockID: &flockID,
					Type:    models.AlertInfo,
					Title:   titleSlaughterUpcoming,
					Message: fmt.Sprintf("%s is due for slaughter on %s (%d days left).",
						flock.Name, *flock.ExpectedSlaughterDate, days),
				})
			}
		}
	}
	return out
}

// mortalityRate returns the day's losses as a percentage of the birds still
// alive and whether it crosses the alert threshold. An emptied flock always
// crosses it.
func (s *Service) mortalityRate(mortality, alive int) (float64, bool) {
	if alive <= 0 {
		return 100, true
	}
	rate := float64(mortality) / float64(alive) * 100
	return rate, rate > s.opts.MortalityAlertPercent
}

func (s *Service) raiseOnce(ctx context.Context, flock *models.Flock, in alerts.RaiseInput, since time.Time) (bool, error) {
	exists, err := s.src.Alerts.RaisedSince(ctx, flock.ID, in.Title, since)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.src.Alerts.Raise(ctx, in); err != nil {
		return false, fmt.Errorf("raise %q for flock %s: %w", in.Title, flock.ID, err)
	}
	return true, nil
}

// BuildDailySummary rolls up one user's farm for day (YYYY-MM-DD).
func (s *Service) BuildDailySummary(ctx context.Context, user models.User, day string) (models.DailySummary, error) {
	summary := models.DailySummary{
		UserID:    user.ID,
		FarmName:  user.FarmName,
		Date:      day,
		CreatedAt: s.now().UTC(),
	}

	var err error
	if summary.ActiveFlocks, err = s.src.Herd.ActiveFlockCount(ctx, user.ID); err != nil {
		return summary, err
	}
	if summary.LiveBirds, err = s.src.Herd.LiveBirdCount(ctx, user.ID); err != nil {
		return summary, err
	}
	if summary.Mortality, summary.FeedConsumed, err = s.src.Production.DailyTotals(ctx, user.ID, day); err != nil {
		return summary, err
	}

	totals, err := s.src.Ledger.Totals(ctx, user.ID, day, day)
	if err != nil {
		return summary, err
	}
	summary.Income = totals.Income
	summary.Expenses = totals.Expense
	summary.Profit = totals.Net()
	return summary, nil
}

// DailySummaries builds the summary of every user with an active flock and
// pushes it to each sink. Failures for one user or sink do not stop the
// others; they are joined into the returned error.
func (s *Service) DailySummaries(ctx context.Context, day string) (int, error) {
	if _, err := time.Parse(models.DateLayout, day); err != nil {
		return 0, fmt.Errorf("invalid summary day %q: %w", day, err)
	}

	users, err := s.src.Users.ListWithActiveFlocks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load users: %w", err)
	}

	delivered := 0
	var errs []error
	for _, user := range users {
		summary, err := s.BuildDailySummary(ctx, user, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("summary for %s: %w", user.ID, err))
			continue
		}

		for _, sink := range s.sinks {
			if err := sink.SaveDailySummary(ctx, summary); err != nil {
				errs = append(errs, fmt.Errorf("deliver summary for %s: %w", user.ID, err))
			}
		}
		delivered++
	}

	s.logger.Info("daily summaries generated",
		zap.String("day", day),
		zap.Int("users", len(users)),
		zap.Int("sinks", len(s.sinks)),
		zap.Int("errors", len(errs)))
	return delivered, errors.Join(errs...)
}
