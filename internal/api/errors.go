package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
)

// mapErrorToStatus maps errors from the core services to HTTP status codes and ErrorResponse.
func mapErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int

	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrInvalidStatus):
		statusCode = http.StatusBadRequest
	case errors.Is(err, core.ErrUserNotFound),
		errors.Is(err, core.ErrPetNotFound),
		errors.Is(err, core.ErrServiceNotFound),
		errors.Is(err, core.ErrProviderNotFound),
		errors.Is(err, core.ErrBookingNotFound),
		errors.Is(err, core.ErrPaymentNotFound),
		errors.Is(err, core.ErrNotificationNotFound),
		errors.Is(err, core.ErrLocationNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, core.ErrEmailTaken),
		errors.Is(err, core.ErrUserExists),
		errors.Is(err, core.ErrInvalidTransition):
		statusCode = http.StatusConflict
	case errors.Is(err, core.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
	case errors.Is(err, core.ErrAssistantUnavailable):
		statusCode = http.StatusServiceUnavailable
	default:
		logger.Error("Internal server error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		statusCode = http.StatusInternalServerError
	}
	c.JSON(statusCode, ErrorResponse{Error: err.Error()})
}

// bindJSON binds the request body and writes a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return false
	}
	return true
}
