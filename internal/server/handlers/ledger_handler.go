package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/service/finance"
)

// FinanceService is the financial ledger.
type FinanceService interface {
	Record(ctx context.Context, owner string, in finance.RecordInput) (*models.Transaction, error)
	List(ctx context.Context, owner string) ([]models.Transaction, error)
	Summary(ctx context.Context, owner, from, to string) (models.FinanceTotals, error)
}

// AlertService is the alert store.
type AlertService interface {
	List(ctx context.Context, owner string) ([]models.Alert, error)
	MarkRead(ctx context.Context, owner, id string) error
}

// DashboardService builds the home screen overview.
type DashboardService interface {
	Summary(ctx context.Context, owner string) (*models.DashboardSummary, error)
}

// LedgerHandler serves finances, alerts and the dashboard.
type LedgerHandler struct {
	finance   FinanceService
	alerts    AlertService
	dashboard DashboardService
	logger    *zap.Logger
	now       func() time.Time
}

// NewLedgerHandler constructs the ledger HTTP adapter.
func NewLedgerHandler(financeSvc FinanceService, alertSvc AlertService, dashboardSvc DashboardService, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{finance: financeSvc, alerts: alertSvc, dashboard: dashboardSvc, logger: logger, now: time.Now}
}

// ListTransactions returns the caller's transactions.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.finance.List(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": list})
}

// RecordTransaction appends an income or expense.
func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var in finance.RecordInput
	if !bindJSON(c, &in) {
		return
	}
	tx, err := h.finance.Record(c.Request.Context(), id.UserID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"data": tx})
}

// FinanceSummary totals a date window, the trailing 30 days by default.
func (h *LedgerHandler) FinanceSummary(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	from, to := finance.TrailingWindow(h.now(), 30)
	from = c.DefaultQuery("from", from)
	to = c.DefaultQuery("to", to)

	totals, err := h.finance.Summary(c.Request.Context(), id.UserID, from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": gin.H{
		"from":    from,
		"to":      to,
		"income":  totals.Income,
		"expense": totals.Expense,
		"net":     totals.Net(),
	}})
}

// ListAlerts returns the caller's alerts.
func (h *LedgerHandler) ListAlerts(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.alerts.List(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": list})
}

// MarkAlertRead flags an alert read. Unknown or foreign ids still succeed.
func (h *LedgerHandler) MarkAlertRead(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	if err := h.alerts.MarkRead(c.Request.Context(), id.UserID, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Alert marked as read"})
}

// DashboardStats returns the caller's overview.
func (h *LedgerHandler) DashboardStats(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	summary, err := h.dashboard.Summary(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"data": summary})
}
