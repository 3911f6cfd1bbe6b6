package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/service/flocks"
	"github.com/ecoloop/farmer/internal/service/health"
	"github.com/ecoloop/farmer/internal/service/production"
)

// FlockService is the flock ledger.
type FlockService interface {
	Create(ctx context.Context, owner string, in flocks.CreateInput) (*models.Flock, error)
	List(ctx context.Context, owner string) ([]models.Flock, error)
	Get(ctx context.Context, owner, id string) (*models.Flock, error)
	Close(ctx context.Context, owner, id string) (*models.Flock, error)
}

// ProductionService is the daily production log.
type ProductionService interface {
	Upsert(ctx context.Context, owner string, in production.UpsertInput) (*models.ProductionRecord, error)
	List(ctx context.Context, owner, flockID string) ([]models.ProductionRecord, error)
}

// HealthService is the treatment log.
type HealthService interface {
	Record(ctx context.Context, owner string, in health.RecordInput) (*models.HealthRecord, error)
	List(ctx context.Context, owner, flockID string) ([]models.HealthRecord, error)
}

// FlockHandler serves flocks and the records hanging off them.
type FlockHandler struct {
	flocks     FlockService
	production ProductionService
	health     HealthService
	logger     *zap.Logger
}

// NewFlockHandler constructs the flock HTTP adapter.
func NewFlockHandler(flockSvc FlockService, productionSvc ProductionService, healthSvc HealthService, logger *zap.Logger) *FlockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlockHandler{flocks: flockSvc, production: productionSvc, health: healthSvc, logger: logger}
}

// List returns the caller's flocks.
func (h *FlockHandler) List(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.flocks.List(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": list})
}

// Create registers a new flock.
func (h *FlockHandler) Create(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in flocks.CreateInput
	if !bindJSON(c, &in) {
		return
	}
	flock, err := h.flocks.Create(c.Request.Context(), id.UserID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"data": flock})
}

// Get returns one owned flock.
func (h *FlockHandler) Get(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	flock, err := h.flocks.Get(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": flock})
}

// Close ends a flock's cycle.
func (h *FlockHandler) Close(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	flock, err := h.flocks.Close(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": flock})
}

// ListProduction returns the records of an owned flock.
func (h *FlockHandler) ListProduction(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	records, err := h.production.List(c.Request.Context(), id.UserID, c.Param("flockId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": records})
}

// UpsertProduction writes the day's record and applies its mortality.
func (h *FlockHandler) UpsertProduction(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in production.UpsertInput
	if !bindJSON(c, &in) {
		return
	}
	rec, err := h.production.Upsert(c.Request.Context(), id.UserID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": rec})
}

// ListHealth returns the treatments of an owned flock.
func (h *FlockHandler) ListHealth(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	records, err := h.health.List(c.Request.Context(), id.UserID, c.Param("flockId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": records})
}

// RecordHealth logs a treatment.
func (h *FlockHandler) RecordHealth(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in health.RecordInput
	if !bindJSON(c, &in) {
		return
	}
	rec, err := h.health.Record(c.Request.Context(), id.UserID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"data": rec})
}
