package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/config"
	"github.com/ecoloop/farmer/internal/domain/models"
)

const jobTimeout = 2 * time.Minute

// Jobs is the work the scheduler triggers.
type Jobs interface {
	ScanAlerts(ctx context.Context, now time.Time) (int, error)
	DailySummaries(ctx context.Context, day string) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	jobs     Jobs
	cfg      config.ReportingConfig
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, jobs Jobs, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load scheduler timezone: %w", err)
	}

	// Standard 5-field cron specs, evaluated in the farm's timezone.
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		jobs:     jobs,
		cfg:      cfg,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("alert_scan", s.cfg.AlertScanSchedule),
		zap.String("daily_summary", s.cfg.DailySummarySchedule),
		zap.String("timezone", s.location.String()))

	if _, err := s.cron.AddFunc(s.cfg.AlertScanSchedule, s.runAlertScan); err != nil {
		return fmt.Errorf("schedule alert scan: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.DailySummarySchedule, s.runDailySummary); err != nil {
		return fmt.Errorf("schedule daily summary: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runAlertScan() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	raised, err := s.jobs.ScanAlerts(ctx, s.now())
	if err != nil {
		s.logger.Error("alert scan failed", zap.Int("raised", raised), zap.Error(err))
		return
	}
	s.logger.Info("alert scan completed", zap.Int("raised", raised))
}

func (s *Scheduler) runDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	day := s.now().In(s.location).Format(models.DateLayout)
	delivered, err := s.jobs.DailySummaries(ctx, day)
	if err != nil {
		s.logger.Error("daily summary failed", zap.String("day", day), zap.Int("delivered", delivered), zap.Error(err))
		return
	}
	s.logger.Info("daily summary sent", zap.String("day", day), zap.Int("delivered", delivered))
}
