package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// RealtimeHandler handles pet GPS locations and chat threads.
type RealtimeHandler struct {
	locations *core.LocationService
	chats     *core.ChatService
	logger    *zap.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(locations *core.LocationService, chats *core.ChatService, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{locations: locations, chats: chats, logger: logger}
}

// UpdatePetLocation handles POST /update-pet-location
func (h *RealtimeHandler) UpdatePetLocation(c *gin.Context) {
	var req models.PetLocationRequest
	if !bindJSON(c, &req) {
		return
	}
	loc, err := h.locations.UpdateLocation(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "location": loc})
}

// GetPetLocation handles GET /pet-location?petId=
func (h *RealtimeHandler) GetPetLocation(c *gin.Context) {
	petID := c.Query("petId")
	if petID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "petId query parameter is required"})
		return
	}
	loc, err := h.locations.GetLocation(c.Request.Context(), petID)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// SendChatMessage handles POST /chats/:chatId/messages
func (h *RealtimeHandler) SendChatMessage(c *gin.Context) {
	var req models.ChatMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.chats.SendMessage(c.Request.Context(), c.Param("chatId"), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// ListChatMessages handles GET /chats/:chatId/messages
func (h *RealtimeHandler) ListChatMessages(c *gin.Context) {
	messages, err := h.chats.ListMessages(c.Request.Context(), c.Param("chatId"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
