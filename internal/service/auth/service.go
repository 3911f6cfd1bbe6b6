package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/validation"
)

// UserStore is the credential store the service needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email        string              `json:"email" validate:"required,email"`
	Password     string              `json:"password" validate:"required,min=6"`
	Name         string              `json:"name" validate:"required"`
	FarmName     string              `json:"farm_name"`
	Location     string              `json:"location"`
	Phone        string              `json:"phone"`
	Subscription models.Subscription `json:"subscription" validate:"omitempty,oneof=free pro premium"`
}

// LoginInput is the sign-in form.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name         string              `json:"name" validate:"required"`
	FarmName     string              `json:"farm_name"`
	Location     string              `json:"location"`
	Phone        string              `json:"phone"`
	Subscription models.Subscription `json:"subscription" validate:"omitempty,oneof=free pro premium"`
}

// Result is returned by register and login.
type Result struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Service registers and authenticates users and issues session tokens.
type Service struct {
	users  UserStore
	tokens *TokenIssuer
	logger *zap.Logger
	now    func() time.Time
	cost   int
}

// NewService wires an auth service.
func NewService(users UserStore, tokens *TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrDuplicateIdentity
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	subscription := in.Subscription
	if subscription == "" {
		subscription = models.SubscriptionFree
	}

	now := s.now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		FarmName:     in.FarmName,
		Location:     in.Location,
		Phone:        in.Phone,
		Subscription: subscription,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.issue(user)
}

// Authenticate checks credentials and issues a token. Unknown email and wrong
// password are reported identically.
func (s *Service) Authenticate(ctx context.Context, in LoginInput) (*Result, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	return s.issue(user)
}

// Verify decodes a bearer token into an identity.
func (s *Service) Verify(token string) (*models.Identity, error) {
	return s.tokens.Verify(token)
}

// Profile returns the caller's account.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrNotFoundOrForbidden
	}
	return user, nil
}

// UpdateProfile edits the caller's profile fields. Email and password are not editable here.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.FarmName = in.FarmName
	user.Location = in.Location
	user.Phone = in.Phone
	if in.Subscription != "" {
		user.Subscription = in.Subscription
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) issue(user *models.User) (*Result, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
