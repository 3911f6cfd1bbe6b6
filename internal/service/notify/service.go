// Package notify forwards alerts to farmers over WhatsApp.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/pkg/clients/whatsapp"
)

// UserLookup resolves the owner of an alert.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Service sends alert texts to the owner's phone.
type Service struct {
	users  UserLookup
	sender whatsapp.Sender
	logger *zap.Logger
}

// NewService wires the WhatsApp notifier.
func NewService(users UserLookup, sender whatsapp.Sender, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, sender: sender, logger: logger}
}

// NotifyAlert texts the alert to its owner. Owners without a phone number are
// skipped.
func (s *Service) NotifyAlert(ctx context.Context, alert *models.Alert) error {
	user, err := s.users.FindByID(ctx, alert.UserID)
	if err != nil {
		return fmt.Errorf("load alert owner: %w", err)
	}
	if user == nil || strings.TrimSpace(user.Phone) == "" {
		s.logger.Debug("alert owner has no phone, skipping", zap.String("user_id", alert.UserID))
		return nil
	}

	n := Render(alert, user.Phone)
	id, err := s.sender.SendText(ctx, n.To, n.Title+"\n"+n.Message)
	if err != nil {
		return err
	}

	s.logger.Info("alert sent over whatsapp", zap.String("alert_id", alert.ID), zap.String("message_id", id))
	return nil
}

// Render turns an alert into the text pushed to the farmer.
func Render(alert *models.Alert, to string) models.Notification {
	prefix := "ℹ️"
	switch alert.Type {
	case models.AlertWarning:
		prefix = "⚠️"
	case models.AlertCritical:
		prefix = "🚨"
	}
	return models.Notification{
		To:      to,
		Title:   fmt.Sprintf("%s %s", prefix, alert.Title),
		Message: alert.Message,
	}
}

// Nop drops every notification. It is used when WhatsApp is not configured.
type Nop struct{}

// NotifyAlert does nothing.
func (Nop) NotifyAlert(context.Context, *models.Alert) error { return nil }
