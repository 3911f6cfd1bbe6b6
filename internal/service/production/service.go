package production

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/validation"
)

// Repository defines the record storage used by the event log.
type Repository interface {
	UpsertWithMortality(ctx context.Context, rec *models.ProductionRecord, at time.Time) error
	FindByDate(ctx context.Context, flockID, date string) (*models.ProductionRecord, error)
	ListByFlock(ctx context.Context, flockID string) ([]models.ProductionRecord, error)
}

// Ownership is the flock ownership predicate.
type Ownership interface {
	BelongsTo(ctx context.Context, flockID, userID string) error
}

// UpsertInput is one day of observations for a flock.
type UpsertInput struct {
	FlockID       string   `json:"flock_id" validate:"required"`
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	Mortality     int      `json:"mortality" validate:"gte=0"`
	AvgWeight     *float64 `json:"avg_weight" validate:"omitempty,gte=0"`
	FeedConsumed  *float64 `json:"feed_consumed" validate:"omitempty,gte=0"`
	WaterConsumed *float64 `json:"water_consumed" validate:"omitempty,gte=0"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity" validate:"omitempty,gte=0,lte=100"`
	Notes         string   `json:"notes"`
}

// Service is the production event log.
type Service struct {
	repo   Repository
	owners Ownership
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a production event log.
func NewService(repo Repository, owners Ownership, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, owners: owners, logger: logger, now: time.Now}
}

// Upsert writes or replaces the record for (flock, date) and subtracts its
// mortality from the flock's live count. The subtraction is applied on every
// call: posting the same day twice removes the birds twice, and correcting a
// value is left to the caller.
func (s *Service) Upsert(ctx context.Context, owner string, in UpsertInput) (*models.ProductionRecord, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if err := s.owners.BelongsTo(ctx, in.FlockID, owner); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &models.ProductionRecord{
		ID:            uuid.New().String(),
		FlockID:       in.FlockID,
		RecordDate:    in.Date,
		Mortality:     in.Mortality,
		AvgWeight:     in.AvgWeight,
		FeedConsumed:  in.FeedConsumed,
		WaterConsumed: in.WaterConsumed,
		Temperature:   in.Temperature,
		Humidity:      in.Humidity,
		Notes:         in.Notes,
		CreatedAt:     now,
	}

	if err := s.repo.UpsertWithMortality(ctx, rec, now); err != nil {
		return nil, err
	}

	s.logger.Info("production record saved",
		zap.String("flock_id", in.FlockID),
		zap.String("date", in.Date),
		zap.Int("mortality", in.Mortality))

	stored, err := s.repo.FindByDate(ctx, in.FlockID, in.Date)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return rec, nil
	}
	return stored, nil
}

// List returns the flock's records, newest date first.
func (s *Service) List(ctx context.Context, owner, flockID string) ([]models.ProductionRecord, error) {
	if err := s.owners.BelongsTo(ctx, flockID, owner); err != nil {
		return nil, err
	}
	return s.repo.ListByFlock(ctx, flockID)
}
