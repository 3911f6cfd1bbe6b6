// Package middleware holds the gin middlewares shared by every route group.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
)

const identityKey = "identity"

type identityCtxKey struct{}

// TokenVerifier decodes a session token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token. A missing token
// answers 401 and an invalid or expired one 403. Every request is verified
// on its own.
func RequireAuth(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, http.StatusUnauthorized, models.ErrMissingCredential)
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			logger.Debug("rejected session token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			abort(c, http.StatusForbidden, models.ErrInvalidCredential)
			return
		}

		c.Set(identityKey, *identity)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), identityCtxKey{}, *identity))
		c.Next()
	}
}

// Identity returns the caller set by RequireAuth.
func Identity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

// IdentityFromContext returns the caller carried by a request context.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(models.Identity)
	return id, ok
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": err.Error()})
}
