package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/service/auth"
)

// AccountService is the credential store and session issuer.
type AccountService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Result, error)
	Authenticate(ctx context.Context, in auth.LoginInput) (*auth.Result, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in auth.ProfileInput) (*models.User, error)
}

// AuthHandler serves registration, login and the caller's profile.
type AuthHandler struct {
	svc    AccountService
	logger *zap.Logger
}

// NewAuthHandler constructs the auth HTTP adapter.
func NewAuthHandler(svc AccountService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

// Register creates an account and returns a session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"token": res.Token, "expires_at": res.ExpiresAt, "user": res.User})
}

// Login authenticates and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var in auth.LoginInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.Authenticate(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"token": res.Token, "expires_at": res.ExpiresAt, "user": res.User})
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}

	user, err := h.svc.Profile(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user})
}

// UpdateMe edits the caller's profile.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in auth.ProfileInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), id.UserID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user})
}
