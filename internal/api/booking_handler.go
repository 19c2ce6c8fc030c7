package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// BookingHandler handles the booking endpoints.
type BookingHandler struct {
	bookings *core.BookingService
	logger   *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *core.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

// CreateBooking handles POST /bookings. A repeated request inside the dedup window
// returns the existing booking with deduplicated set.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}
	view, deduplicated, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	resp := toBookingResponse(view)
	resp.Deduplicated = &deduplicated
	c.JSON(http.StatusCreated, resp)
}

// GetBooking handles GET /bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	view, err := h.bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(view))
}

// ListForPetOwner handles GET /bookings/pet-owner/:id
func (h *BookingHandler) ListForPetOwner(c *gin.Context) {
	views, err := h.bookings.ListForOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(views))
}

// ListForProvider handles GET /bookings/provider/:id
func (h *BookingHandler) ListForProvider(c *gin.Context) {
	views, err := h.bookings.ListForProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(views))
}

// UpdateStatus handles PUT /bookings/:id
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateBookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.bookings.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(view))
}

// DeleteBooking handles DELETE /bookings/:id
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	if err := h.bookings.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Booking deleted"})
}
