package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// NotificationHandler handles in-app notifications.
type NotificationHandler struct {
	notifications *core.NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *core.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// ListNotifications handles GET /notifications/:userId
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.notifications.ListForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkRead handles PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Notification marked as read"})
}
