package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/server/middleware"
	"github.com/ecoloop/farmer/internal/validation"
)

const internalErrorMessage = "Internal server error"

func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondError maps service errors onto the response envelope. Anything
// unrecognised is logged and answered with a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		respondMessage(c, http.StatusBadRequest, validation.Message(err))
	case errors.Is(err, models.ErrDuplicateIdentity), errors.Is(err, models.ErrInvalidCredentials):
		respondMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrMissingCredential):
		respondMessage(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrInvalidCredential), errors.Is(err, models.ErrInvalidOrExpiredToken):
		respondMessage(c, http.StatusForbidden, models.ErrInvalidCredential.Error())
	case errors.Is(err, models.ErrNotFoundOrForbidden):
		respondMessage(c, http.StatusNotFound, err.Error())
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		_ = c.Error(err)
		respondMessage(c, http.StatusInternalServerError, internalErrorMessage)
	}
}

// bindJSON decodes the body and answers 400 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// caller returns the authenticated identity. Routes using it sit behind
// middleware.RequireAuth, so a missing identity is a wiring bug.
func caller(c *gin.Context) (models.Identity, bool) {
	id, ok := middleware.Identity(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, models.ErrMissingCredential.Error())
	}
	return id, ok
}
