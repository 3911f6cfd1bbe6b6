package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/service/forum"
)

// ForumService is the community forum.
type ForumService interface {
	List(ctx context.Context, limit int) ([]models.ForumPost, error)
	Create(ctx context.Context, author models.Identity, in forum.PostInput) (*models.ForumPost, error)
}

// Pinger checks that the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CommunityHandler serves the public endpoints: forum and liveness.
type CommunityHandler struct {
	forum  ForumService
	db     Pinger
	logger *zap.Logger
}

// NewCommunityHandler constructs the public HTTP adapter. db may be nil.
func NewCommunityHandler(forumSvc ForumService, db Pinger, logger *zap.Logger) *CommunityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommunityHandler{forum: forumSvc, db: db, logger: logger}
}

// ListPosts returns recent forum posts. ?limit= caps the count.
func (h *CommunityHandler) ListPosts(c *gin.Context) {
	limit := forum.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondMessage(c, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = n
	}

	posts, err := h.forum.List(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": posts})
}

// CreatePost publishes a post as the caller.
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in forum.PostInput
	if !bindJSON(c, &in) {
		return
	}
	post, err := h.forum.Create(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"data": post})
}

// HealthCheck is the liveness probe.
func (h *CommunityHandler) HealthCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("health check failed", zap.Error(err))
			respondMessage(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	respond(c, http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}
