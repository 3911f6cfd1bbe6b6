package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/validation"
)

// Repository defines the alert storage.
type Repository interface {
	Create(ctx context.Context, a *models.Alert) error
	ListByOwner(ctx context.Context, userID string) ([]models.Alert, error)
	MarkRead(ctx context.Context, id, userID string) (int64, error)
	ExistsSince(ctx context.Context, flockID, title string, since time.Time) (bool, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Notifier pushes a freshly raised alert to its owner outside the app.
type Notifier interface {
	NotifyAlert(ctx context.Context, alert *models.Alert) error
}

// RaiseInput describes a new alert.
type RaiseInput struct {
	UserID  string           `validate:"required"`
	FlockID *string          `validate:"omitempty"`
	Type    models.AlertType `validate:"required,oneof=info warning critical"`
	Title   string           `validate:"required"`
	Message string           `validate:"required"`
}

// Service is the alert store.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the alert store. notifier may be nil.
func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// List returns the owner's alerts, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]models.Alert, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// MarkRead flags the alert as read. Ids that are unknown or belong to another
// user change nothing and still succeed.
func (s *Service) MarkRead(ctx context.Context, owner, id string) error {
	n, err := s.repo.MarkRead(ctx, id, owner)
	if err != nil {
		return err
	}
	if n == 0 {
		s.logger.Debug("mark read matched no alert", zap.String("alert_id", id), zap.String("user_id", owner))
	}
	return nil
}

// UnreadCount returns how many of the owner's alerts are still unread.
func (s *Service) UnreadCount(ctx context.Context, owner string) (int, error) {
	return s.repo.CountUnread(ctx, owner)
}

// RaisedSince reports whether an alert with title was raised for the flock at
// or after since.
func (s *Service) RaisedSince(ctx context.Context, flockID, title string, since time.Time) (bool, error) {
	return s.repo.ExistsSince(ctx, flockID, title, since)
}

// Raise stores a new unread alert and forwards it to the notifier. A failed
// notification is logged; the alert stays stored.
func (s *Service) Raise(ctx context.Context, in RaiseInput) (*models.Alert, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	alert := &models.Alert{
		ID:        uuid.New().String(),
		UserID:    in.UserID,
		FlockID:   in.FlockID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info("alert raised",
		zap.String("alert_id", alert.ID),
		zap.String("user_id", alert.UserID),
		zap.String("type", string(alert.Type)),
		zap.String("title", alert.Title))

	if s.notifier != nil {
		if err := s.notifier.NotifyAlert(ctx, alert); err != nil {
			s.logger.Warn("alert notification failed", zap.String("alert_id", alert.ID), zap.Error(err))
		}
	}
	return alert, nil
}
