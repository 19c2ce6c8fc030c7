package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"petcare-backend-go/internal/core"
)

func TestMapErrorToStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name is required", core.ErrValidation), http.StatusBadRequest},
		{core.ErrInvalidStatus, http.StatusBadRequest},
		{fmt.Errorf("%w: b1", core.ErrBookingNotFound), http.StatusNotFound},
		{core.ErrLocationNotFound, http.StatusNotFound},
		{core.ErrEmailTaken, http.StatusConflict},
		{core.ErrInvalidTransition, http.StatusConflict},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{core.ErrAssistantUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("failed to create booking: %w", errors.New("deadline exceeded")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/test", nil)

			mapErrorToStatus(c, logger, tt.err)
			assert.Equal(t, tt.want, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.err.Error()), w.Body.String())
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)

	s.metrics.ObserveBookingCreated(false)
	w = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "petcare_bookings_created_total")
}
