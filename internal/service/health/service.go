package health

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/validation"
)

// Repository defines the treatment log storage.
type Repository interface {
	Create(ctx context.Context, h *models.HealthRecord) error
	ListByFlock(ctx context.Context, flockID string) ([]models.HealthRecord, error)
}

// Ownership is the flock ownership predicate.
type Ownership interface {
	BelongsTo(ctx context.Context, flockID, userID string) error
}

// RecordInput is a treatment given to a flock.
type RecordInput struct {
	FlockID        string               `json:"flock_id" validate:"required"`
	Treatment      string               `json:"treatment" validate:"required"`
	TreatmentType  models.TreatmentType `json:"treatment_type" validate:"omitempty,oneof=vaccination medication other"`
	AdministeredOn string               `json:"administered_on" validate:"required,datetime=2006-01-02"`
	Notes          string               `json:"notes"`
}

// Service keeps the per-flock treatment history.
type Service struct {
	repo   Repository
	owners Ownership
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the treatment log.
func NewService(repo Repository, owners Ownership, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, owners: owners, logger: logger, now: time.Now}
}

// List returns the treatments of an owned flock, latest first.
func (s *Service) List(ctx context.Context, owner, flockID string) ([]models.HealthRecord, error) {
	if err := s.owners.BelongsTo(ctx, flockID, owner); err != nil {
		return nil, err
	}
	return s.repo.ListByFlock(ctx, flockID)
}

// Record logs a treatment against an owned flock.
func (s *Service) Record(ctx context.Context, owner string, in RecordInput) (*models.HealthRecord, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := s.owners.BelongsTo(ctx, in.FlockID, owner); err != nil {
		return nil, err
	}

	kind := in.TreatmentType
	if kind == "" {
		kind = models.TreatmentOther
	}

	rec := &models.HealthRecord{
		ID:             uuid.New().String(),
		FlockID:        in.FlockID,
		Treatment:      in.Treatment,
		TreatmentType:  kind,
		AdministeredOn: in.AdministeredOn,
		Notes:          in.Notes,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("health record saved", zap.String("flock_id", rec.FlockID), zap.String("treatment", rec.Treatment))
	return rec, nil
}
