package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ecoloop/farmer/internal/domain/models"
	"github.com/ecoloop/farmer/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{validation.Fail("name is required"), http.StatusBadRequest, "name is required"},
		{models.ErrDuplicateIdentity, http.StatusBadRequest, models.ErrDuplicateIdentity.Error()},
		{models.ErrInvalidCredentials, http.StatusBadRequest, models.ErrInvalidCredentials.Error()},
		{models.ErrMissingCredential, http.StatusUnauthorized, models.ErrMissingCredential.Error()},
		{models.ErrInvalidOrExpiredToken, http.StatusForbidden, models.ErrInvalidCredential.Error()},
		{fmt.Errorf("lookup: %w", models.ErrNotFoundOrForbidden), http.StatusNotFound, models.ErrNotFoundOrForbidden.Error()},
		{errors.New("sqlite: database is locked"), http.StatusInternalServerError, internalErrorMessage},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			core, logs := observer.New(zap.ErrorLevel)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/x", nil)

			respondError(c, zap.New(core), tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.message, body["message"])

			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, 1, logs.Len())
				assert.NotContains(t, w.Body.String(), "database is locked")
			} else {
				assert.Zero(t, logs.Len())
			}
		})
	}
}

type failingDashboard struct{}

func (failingDashboard) Summary(context.Context, string) (*models.DashboardSummary, error) {
	return nil, errors.New("dashboard summary: count active flocks: disk I/O error")
}

func TestDashboardFailureIsGeneric500(t *testing.T) {
	h := NewLedgerHandler(nil, nil, failingDashboard{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	c.Set("identity", models.Identity{UserID: "u1"})

	h.DashboardStats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
}

func TestBindJSONRejectsMalformedBody(t *testing.T) {
	h := NewFlockHandler(nil, nil, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/flocks", http.NoBody)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("identity", models.Identity{UserID: "u1"})

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestCallerMissingIdentity(t *testing.T) {
	h := NewFlockHandler(nil, nil, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/flocks", nil)

	h.List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
