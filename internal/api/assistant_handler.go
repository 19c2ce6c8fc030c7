package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// AssistantHandler serves the chat assistant.
type AssistantHandler struct {
	assistant *core.AssistantService
	logger    *zap.Logger
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(assistant *core.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, logger: logger}
}

// GenerateResponse handles POST /generate-ai-response
func (h *AssistantHandler) GenerateResponse(c *gin.Context) {
	var req models.AssistantRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.assistant.Reply(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, AssistantResponse{Response: reply.Response, SessionID: reply.SessionID})
}
