package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
	"petcare-backend-go/internal/observability"
)

// Stripe event types handled by the webhook.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// Checkout metadata keys.
const (
	metadataServiceID = "service_id"
	metadataUserID    = "user_id"
	metadataBookingID = "booking_id"
)

// PaymentOptions configures Stripe checkout.
type PaymentOptions struct {
	WebhookSecret string
	Currency      string
	FrontendURL   string
}

// CheckoutResult is returned to the client to redirect into Stripe Checkout.
type CheckoutResult struct {
	SessionID string
	URL       string
}

// PaymentService creates Stripe Checkout sessions and reconciles their outcome from webhooks.
type PaymentService struct {
	checkout CheckoutSessionClient
	store    db.Store
	payments db.PaymentRepository
	bookings db.BookingRepository
	outbox   SideEffects
	metrics  *observability.Metrics
	opts     PaymentOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewPaymentService creates a PaymentService. Currency defaults to USD.
func NewPaymentService(checkout CheckoutSessionClient, store db.Store, payments db.PaymentRepository, bookings db.BookingRepository, outbox SideEffects, metrics *observability.Metrics, opts PaymentOptions, logger *zap.Logger) *PaymentService {
	if opts.Currency == "" {
		opts.Currency = string(stripe.CurrencyUSD)
	}
	return &PaymentService{
		checkout: checkout,
		store:    store,
		payments: payments,
		bookings: bookings,
		outbox:   outbox,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// ToMinorUnits converts a price in whole currency units to cents, rounding half away from zero.
func ToMinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateCheckoutSession opens a Stripe Checkout session and records a pending payment keyed by the session ID.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, req models.CheckoutSessionRequest) (*CheckoutResult, error) {
	if strings.TrimSpace(req.ServiceName) == "" {
		return nil, fmt.Errorf("%w: serviceName is required", ErrValidation)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than 0", ErrValidation)
	}

	amount := ToMinorUnits(req.Price)
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = s.opts.Currency
	}
	frontend := strings.TrimRight(s.opts.FrontendURL, "/")

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{string(stripe.PaymentMethodTypeCard)}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ServiceName),
				},
				UnitAmount: stripe.Int64(amount),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(frontend + "/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(frontend + "/payment-cancelled"),
	}
	params.Context = ctx
	params.AddMetadata(metadataServiceID, req.ServiceID)
	params.AddMetadata(metadataUserID, req.UserID)
	params.AddMetadata(metadataBookingID, req.BookingID)

	session, err := s.checkout.New(params)
	if err != nil {
		s.logger.Error("Stripe checkout session creation failed", zap.String("serviceName", req.ServiceName), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStripeClient, err)
	}

	payment := &models.Payment{
		ID:              session.ID,
		StripeSessionID: session.ID,
		UserID:          req.UserID,
		ServiceID:       req.ServiceID,
		ServiceName:     req.ServiceName,
		BookingID:       req.BookingID,
		Amount:          amount,
		Currency:        currency,
		Status:          models.PaymentPending,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	if req.BookingID != "" {
		if err := s.bookings.Update(ctx, req.BookingID, map[string]interface{}{"stripeSessionId": session.ID}); err != nil {
			s.logger.Warn("Failed to link checkout session to booking", zap.String("bookingID", req.BookingID), zap.String("sessionID", session.ID), zap.Error(err))
		}
	}

	s.logger.Info("Checkout session created", zap.String("sessionID", session.ID), zap.Int64("amount", amount), zap.String("currency", currency))
	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

// HandleWebhook verifies the Stripe signature and applies the event. A returned error other
// than ErrWebhookSignature means the event was not applied and Stripe should retry it.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(body, signature, s.opts.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	eventType := string(event.Type)
	switch eventType {
	case EventCheckoutCompleted, EventCheckoutExpired:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			s.metrics.ObserveWebhookEvent(eventType, "error")
			return fmt.Errorf("%w: decode checkout session: %v", ErrWebhookProcessing, err)
		}
		if eventType == EventCheckoutCompleted {
			err = s.completeCheckout(ctx, &session)
		} else {
			err = s.expireCheckout(ctx, &session)
		}
		if err != nil {
			s.metrics.ObserveWebhookEvent(eventType, "error")
			s.logger.Error("Stripe webhook processing failed", zap.String("eventID", event.ID), zap.String("type", eventType), zap.Error(err))
			return fmt.Errorf("%w: %v", ErrWebhookProcessing, err)
		}
		s.metrics.ObserveWebhookEvent(eventType, "handled")
		s.outbox.Kick()
	default:
		s.metrics.ObserveWebhookEvent(eventType, "ignored")
		s.logger.Info("Unhandled Stripe webhook event type", zap.String("type", eventType))
	}
	return nil
}

// completeCheckout marks the payment completed and the booking paid in one transaction.
// All reads happen before the first write. A session whose payment is already completed
// was applied by an earlier delivery or status poll and is left untouched.
func (s *PaymentService) completeCheckout(ctx context.Context, session *stripe.CheckoutSession) error {
	return s.store.RunTransaction(ctx, func(ctx context.Context, tx db.Tx) error {
		now := s.now().UTC()
		bookingID := session.Metadata[metadataBookingID]

		payment, err := txPayment(tx, session.ID)
		if err != nil {
			return err
		}
		if payment != nil && payment.Status == models.PaymentCompleted {
			s.logger.Info("Checkout session already completed, skipping", zap.String("sessionID", session.ID))
			return nil
		}

		var (
			booking       models.Booking
			bookingExists bool
			service       *models.Service
		)
		serviceID := session.Metadata[metadataServiceID]
		if bookingID != "" {
			if err := tx.Get(db.BookingsCollection, bookingID, &booking); err == nil {
				bookingExists = true
				if serviceID == "" {
					serviceID = booking.ServiceID
				}
			} else if !errors.Is(err, db.ErrNotFound) {
				return err
			}
		}
		if serviceID != "" {
			var svc models.Service
			if err := tx.Get(db.ServicesCollection, serviceID, &svc); err == nil {
				service = &svc
			} else if !errors.Is(err, db.ErrNotFound) {
				return err
			}
		}

		if payment != nil {
			if err := tx.Update(db.PaymentsCollection, session.ID, map[string]interface{}{
				"status":      models.PaymentCompleted,
				"completedAt": now,
			}); err != nil {
				return err
			}
		} else {
			s.logger.Warn("Payment record missing for completed session, creating it", zap.String("sessionID", session.ID))
			created := paymentFromSession(session, models.PaymentCompleted, now, &now)
			created.ServiceID = serviceID
			if service != nil {
				created.ServiceName = service.Name
			}
			if err := tx.Create(db.PaymentsCollection, session.ID, created); err != nil {
				return err
			}
		}

		switch {
		case bookingExists:
			updates := map[string]interface{}{
				"paymentStatus":   models.PaymentStatusPaid,
				"stripeSessionId": session.ID,
			}
			if booking.Status == models.BookingStatusPending {
				updates["status"] = string(models.BookingStatusConfirmed)
			}
			if err := tx.Update(db.BookingsCollection, bookingID, updates); err != nil {
				return err
			}
			return s.outbox.EnqueueTx(tx, paymentReceivedEvent(booking.UserID, bookingID))
		case bookingID != "":
			s.logger.Warn("Booking referenced by checkout session not found", zap.String("bookingID", bookingID), zap.String("sessionID", session.ID))
			return nil
		default:
			return s.createPaidBooking(tx, session, service, now)
		}
	})
}

// createPaidBooking handles sessions created before bookings carried their own ID in the metadata.
func (s *PaymentService) createPaidBooking(tx db.Tx, session *stripe.CheckoutSession, service *models.Service, now time.Time) error {
	userID := session.Metadata[metadataUserID]
	serviceID := session.Metadata[metadataServiceID]
	if userID == "" || serviceID == "" {
		s.logger.Warn("Completed session without booking metadata", zap.String("sessionID", session.ID))
		return nil
	}

	providerID := ""
	if service != nil {
		providerID = service.ProviderID
	}
	sessionID := session.ID
	amount := decimal.NewFromInt(session.AmountTotal).Div(decimal.NewFromInt(100)).InexactFloat64()
	booking := &models.Booking{
		UserID:          userID,
		ProviderID:      providerID,
		ServiceID:       serviceID,
		PetIDs:          []string{},
		PetNames:        []string{},
		BookingDate:     now.Format(time.RFC3339),
		ScheduledDate:   now.Format(time.RFC3339),
		Status:          models.BookingStatusConfirmed,
		PaymentStatus:   models.PaymentStatusPaid,
		StripeSessionID: &sessionID,
		TotalPrice:      amount,
		BasePrice:       amount,
		NumberOfPets:    1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	bookingID := db.NewDocumentID()
	if err := tx.Create(db.BookingsCollection, bookingID, booking); err != nil {
		return err
	}
	s.logger.Info("Created booking from legacy checkout session", zap.String("bookingID", bookingID), zap.String("sessionID", session.ID))
	return s.outbox.EnqueueTx(tx, paymentReceivedEvent(userID, bookingID))
}

func paymentReceivedEvent(userID, bookingID string) *models.OutboxEvent {
	return &models.OutboxEvent{
		TargetRef: userID,
		Title:     "Payment Received",
		Body:      "Your payment was received and your booking is confirmed.",
		Type:      models.NotificationPaymentReceived,
		RelatedID: bookingID,
	}
}

func (s *PaymentService) expireCheckout(ctx context.Context, session *stripe.CheckoutSession) error {
	return s.store.RunTransaction(ctx, func(ctx context.Context, tx db.Tx) error {
		bookingID := session.Metadata[metadataBookingID]

		payment, err := txPayment(tx, session.ID)
		if err != nil {
			return err
		}
		if payment != nil && payment.Status != models.PaymentPending {
			return nil
		}
		bookingExists := false
		if bookingID != "" {
			if bookingExists, err = txExists(tx, db.BookingsCollection, bookingID); err != nil {
				return err
			}
		}

		if payment != nil {
			if err := tx.Update(db.PaymentsCollection, session.ID, map[string]interface{}{"status": models.PaymentExpired}); err != nil {
				return err
			}
		} else if err := tx.Create(db.PaymentsCollection, session.ID, paymentFromSession(session, models.PaymentExpired, s.now().UTC(), nil)); err != nil {
			return err
		}

		if bookingExists {
			return tx.Update(db.BookingsCollection, bookingID, map[string]interface{}{"paymentStatus": models.PaymentStatusUnpaid})
		}
		return nil
	})
}

// GetPaymentStatus returns the payment for a session, refreshing it from Stripe while it is still pending.
func (s *PaymentService) GetPaymentStatus(ctx context.Context, sessionID string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPaymentNotFound, sessionID)
		}
		return nil, err
	}
	if payment.Status != models.PaymentPending || s.checkout == nil {
		return payment, nil
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	session, err := s.checkout.Get(sessionID, params)
	if err != nil {
		s.logger.Warn("Failed to refresh checkout session from Stripe", zap.String("sessionID", sessionID), zap.Error(err))
		return payment, nil
	}
	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		if err := s.completeCheckout(ctx, session); err != nil {
			return nil, err
		}
		s.outbox.Kick()
		return s.payments.GetByID(ctx, sessionID)
	}
	return payment, nil
}

// ListForUser returns every payment recorded for a user.
func (s *PaymentService) ListForUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}

// paymentFromSession builds a payment for a session that has no local record.
// CreatedAt falls back to now when Stripe did not send a creation time.
func paymentFromSession(session *stripe.CheckoutSession, status string, now time.Time, completedAt *time.Time) *models.Payment {
	p := &models.Payment{
		StripeSessionID: session.ID,
		UserID:          session.Metadata[metadataUserID],
		ServiceID:       session.Metadata[metadataServiceID],
		BookingID:       session.Metadata[metadataBookingID],
		Amount:          session.AmountTotal,
		Currency:        string(session.Currency),
		Status:          status,
		CreatedAt:       now,
		CompletedAt:     completedAt,
	}
	if session.Created > 0 {
		p.CreatedAt = time.Unix(session.Created, 0).UTC()
	}
	return p
}

func txPayment(tx db.Tx, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	err := tx.Get(db.PaymentsCollection, sessionID, &payment)
	if err == nil {
		return &payment, nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	return nil, err
}

func txExists(tx db.Tx, collection, id string) (bool, error) {
	var doc map[string]interface{}
	err := tx.Get(collection, id, &doc)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	return false, err
}
