package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/validation"
)

// Repository defines the transaction storage of the ledger.
type Repository interface {
	Create(ctx context.Context, t *models.Transaction) error
	ListByOwner(ctx context.Context, userID string) ([]models.Transaction, error)
	Totals(ctx context.Context, userID, from, to string) (models.FinanceTotals, error)
}

// RecordInput is a new income or expense entry.
type RecordInput struct {
	Type            models.TransactionType `json:"type" validate:"required,oneof=income expense"`
	Category        string                 `json:"category" validate:"required"`
	Description     string                 `json:"description"`
	Amount          decimal.NullDecimal    `json:"amount"`
	TransactionDate string                 `json:"transaction_date" validate:"required,datetime=2006-01-02"`
	FlockID         *string                `json:"flock_id"`
	Counterparty    string                 `json:"counterparty"`
}

// Service is the financial ledger.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a financial ledger.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record appends a transaction for owner. A flock reference is stored as
// given; it is not checked against the owner's flocks.
func (s *Service) Record(ctx context.Context, owner string, in RecordInput) (*models.Transaction, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !in.Amount.Valid {
		return nil, validation.Fail("amount is required")
	}
	if in.Amount.Decimal.IsNegative() {
		return nil, validation.Fail("amount must be 0 or greater")
	}

	var flockID *string
	if in.FlockID != nil && *in.FlockID != "" {
		id := *in.FlockID
		flockID = &id
	}

	tx := &models.Transaction{
		ID:              uuid.New().String(),
		UserID:          owner,
		FlockID:         flockID,
		Type:            in.Type,
		Category:        in.Category,
		Description:     in.Description,
		Amount:          in.Amount.Decimal,
		TransactionDate: in.TransactionDate,
		Counterparty:    in.Counterparty,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("transaction recorded",
		zap.String("user_id", owner),
		zap.String("type", string(tx.Type)),
		zap.String("amount", tx.Amount.String()))
	return tx, nil
}

// List returns the owner's transactions, newest transaction date first.
func (s *Service) List(ctx context.Context, owner string) ([]models.Transaction, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Summary totals income and expense with transaction_date in [from, to].
func (s *Service) Summary(ctx context.Context, owner, from, to string) (models.FinanceTotals, error) {
	if _, err := time.Parse(models.DateLayout, from); err != nil {
		return models.FinanceTotals{}, validation.Fail("from must be a YYYY-MM-DD date")
	}
	if _, err := time.Parse(models.DateLayout, to); err != nil {
		return models.FinanceTotals{}, validation.Fail("to must be a YYYY-MM-DD date")
	}
	if to < from {
		return models.FinanceTotals{}, validation.Fail("to must not be before from")
	}
	return s.repo.Totals(ctx, owner, from, to)
}

// TrailingWindow returns the [from, to] dates covering the days before now,
// inclusive of today.
func TrailingWindow(now time.Time, days int) (string, string) {
	now = now.UTC()
	return now.AddDate(0, 0, -days).Format(models.DateLayout), now.Format(models.DateLayout)
}
