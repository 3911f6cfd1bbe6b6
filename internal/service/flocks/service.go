package flocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/validation"
)

// Repository defines the flock persistence the ledger relies on.
type Repository interface {
	Create(ctx context.Context, f *models.Flock) error
	ListByOwner(ctx context.Context, userID string) ([]models.Flock, error)
	FindOwned(ctx context.Context, id, userID string) (*models.Flock, error)
	Exists(ctx context.Context, id, userID string) (bool, error)
	UpdateStatus(ctx context.Context, id, userID string, status models.FlockStatus, at time.Time) error
}

// CreateInput is the new-flock form.
type CreateInput struct {
	Name                  string `json:"name" validate:"required"`
	Breed                 string `json:"breed" validate:"required"`
	InitialCount          int    `json:"initial_count" validate:"gt=0"`
	HatchDate             string `json:"hatch_date" validate:"required,datetime=2006-01-02"`
	ExpectedSlaughterDate string `json:"expected_slaughter_date" validate:"omitempty,datetime=2006-01-02"`
	HousingType           string `json:"housing_type"`
}

// Service is the flock ledger.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a flock ledger.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create registers a new active flock for owner with its full head count alive.
func (s *Service) Create(ctx context.Context, owner string, in CreateInput) (*models.Flock, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var slaughter *string
	if in.ExpectedSlaughterDate != "" {
		// Both are YYYY-MM-DD so string order is date order.
		if in.ExpectedSlaughterDate < in.HatchDate {
			return nil, validation.Fail("expected_slaughter_date must not be before hatch_date")
		}
		d := in.ExpectedSlaughterDate
		slaughter = &d
	}

	now := s.now().UTC()
	flock := &models.Flock{
		ID:                    uuid.New().String(),
		UserID:                owner,
		Name:                  in.Name,
		Breed:                 in.Breed,
		InitialCount:          in.InitialCount,
		CurrentCount:          in.InitialCount,
		HatchDate:             in.HatchDate,
		ExpectedSlaughterDate: slaughter,
		HousingType:           in.HousingType,
		Status:                models.FlockActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.repo.Create(ctx, flock); err != nil {
		return nil, err
	}

	s.logger.Info("flock created",
		zap.String("flock_id", flock.ID),
		zap.String("user_id", owner),
		zap.Int("initial_count", flock.InitialCount))
	return flock, nil
}

// List returns the owner's flocks, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]models.Flock, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Get returns one flock owned by owner.
func (s *Service) Get(ctx context.Context, owner, id string) (*models.Flock, error) {
	flock, err := s.repo.FindOwned(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	if flock == nil {
		return nil, models.ErrNotFoundOrForbidden
	}
	return flock, nil
}

// Close ends the flock's cycle. Closing an already closed flock succeeds.
func (s *Service) Close(ctx context.Context, owner, id string) (*models.Flock, error) {
	flock, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if flock.Status == models.FlockClosed {
		return flock, nil
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, owner, models.FlockClosed, now); err != nil {
		return nil, err
	}
	flock.Status = models.FlockClosed
	flock.UpdatedAt = now

	s.logger.Info("flock closed", zap.String("flock_id", id), zap.String("user_id", owner))
	return flock, nil
}

// BelongsTo is the ownership predicate shared by every flock-scoped
// operation. A flock owned by someone else is reported exactly like a
// missing one.
func (s *Service) BelongsTo(ctx context.Context, flockID, userID string) error {
	if flockID == "" || userID == "" {
		return models.ErrNotFoundOrForbidden
	}
	ok, err := s.repo.Exists(ctx, flockID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrNotFoundOrForbidden
	}
	return nil
}
