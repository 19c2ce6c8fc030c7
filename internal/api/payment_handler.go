package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// maxWebhookBodyBytes bounds the Stripe event payload read into memory.
const maxWebhookBodyBytes = 65536

// PaymentHandler handles Stripe Checkout and the Stripe webhook.
type PaymentHandler struct {
	payments *core.PaymentService
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments *core.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

// CreateCheckoutSession handles POST /create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutSessionRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.payments.CreateCheckoutSession(c.Request.Context(), req)
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, CheckoutSessionResponse{Success: true, SessionID: result.SessionID, URL: result.URL})
}

// HandleStripeWebhook handles POST /webhook. Stripe authenticates the request through the
// Stripe-Signature header, so the raw body must reach the service untouched.
func (h *PaymentHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("Failed to read Stripe webhook body", zap.Error(err))
		c.String(http.StatusServiceUnavailable, "Error reading request body")
		return
	}

	if err := h.payments.HandleWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature")); err != nil {
		if errors.Is(err, core.ErrWebhookSignature) {
			c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Webhook processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetPaymentStatus handles GET /payment-status/:sessionId
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	payment, err := h.payments.GetPaymentStatus(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ListPayments handles GET /payments/:userId
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.payments.ListForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		mapErrorToStatus(c, h.logger, err)
		return
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}
