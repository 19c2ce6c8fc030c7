package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
	"petcare-backend-go/internal/observability"
)

// BookingOptions controls duplicate suppression and status transition checks.
type BookingOptions struct {
	// DedupWindow is how long an identical booking request returns the existing booking.
	DedupWindow time.Duration
	// StrictTransitions rejects status changes outside the booking lifecycle.
	StrictTransitions bool
}

// BookingView is a booking together with the name of the booked service.
type BookingView struct {
	*models.Booking
	ServiceName string
}

// BookingService creates bookings and manages their status.
type BookingService struct {
	store    db.Store
	bookings db.BookingRepository
	services db.ServiceRepository
	outbox   SideEffects
	metrics  *observability.Metrics
	logger   *zap.Logger
	opts     BookingOptions
	now      func() time.Time
}

// NewBookingService creates a BookingService. DedupWindow defaults to 5s.
func NewBookingService(store db.Store, bookings db.BookingRepository, services db.ServiceRepository, outbox SideEffects, metrics *observability.Metrics, opts BookingOptions, logger *zap.Logger) *BookingService {
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = 5 * time.Second
	}
	return &BookingService{
		store:    store,
		bookings: bookings,
		services: services,
		outbox:   outbox,
		metrics:  metrics,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// CreateBooking persists one booking for all requested pets. An identical request within the
// dedup window returns the booking created first, with deduplicated set.
func (s *BookingService) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*BookingView, bool, error) {
	if req.PetOwnerID == "" || req.ServiceID == "" || req.PetID == "" || req.BookingDate == "" {
		return nil, false, fmt.Errorf("%w: pet_owner_id, service_id, pet_id and booking_date are required", ErrValidation)
	}

	service, err := s.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: %s", ErrServiceNotFound, req.ServiceID)
		}
		return nil, false, err
	}

	providerID := req.ProviderID
	if providerID == "" {
		providerID = service.ProviderID
	}
	petIDs := bookingPetIDs(req.PetID, req.PetIDs)

	basePrice := service.Price
	if req.BasePrice != nil {
		basePrice = *req.BasePrice
	}
	totalPrice := basePrice * float64(len(petIDs))
	if req.TotalPrice != nil {
		totalPrice = *req.TotalPrice
	}

	keyID := bookingKey(req.PetOwnerID, req.ServiceID, req.BookingDate, petIDs)

	var (
		booking      *models.Booking
		deduplicated bool
	)
	err = s.store.RunTransaction(ctx, func(ctx context.Context, tx db.Tx) error {
		now := s.now().UTC()
		booking, deduplicated = nil, false

		var key models.BookingKey
		err := tx.Get(db.BookingKeysCollection, keyID, &key)
		switch {
		case err == nil && now.Before(key.ExpiresAt):
			var existing models.Booking
			getErr := tx.Get(db.BookingsCollection, key.BookingID, &existing)
			if getErr == nil {
				existing.ID = key.BookingID
				booking, deduplicated = &existing, true
				return nil
			}
			if !errors.Is(getErr, db.ErrNotFound) {
				return getErr
			}
			// The booking was deleted inside the window; book again.
		case err != nil && !errors.Is(err, db.ErrNotFound):
			return err
		}

		booking = &models.Booking{
			ID:            db.NewDocumentID(),
			UserID:        req.PetOwnerID,
			ProviderID:    providerID,
			ServiceID:     req.ServiceID,
			PetID:         req.PetID,
			PetIDs:        petIDs,
			PetNames:      req.PetNames,
			BookingDate:   req.BookingDate,
			ScheduledDate: req.BookingDate,
			Status:        models.BookingStatusPending,
			PaymentStatus: models.PaymentStatusPending,
			TotalPrice:    totalPrice,
			BasePrice:     basePrice,
			NumberOfPets:  len(petIDs),
			Notes:         req.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if booking.PetNames == nil {
			booking.PetNames = []string{}
		}
		if err := tx.Create(db.BookingsCollection, booking.ID, booking); err != nil {
			return err
		}
		if err := tx.Set(db.BookingKeysCollection, keyID, &models.BookingKey{
			BookingID: booking.ID,
			ExpiresAt: now.Add(s.opts.DedupWindow),
			CreatedAt: now,
		}); err != nil {
			return err
		}
		return s.enqueueCreated(tx, booking, service.Name)
	})
	if err != nil {
		s.logger.Error("Failed to create booking", zap.String("userID", req.PetOwnerID), zap.String("serviceID", req.ServiceID), zap.Error(err))
		return nil, false, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.ObserveBookingCreated(deduplicated)
	if deduplicated {
		s.logger.Info("Duplicate booking request, returning existing booking", zap.String("bookingID", booking.ID))
	} else {
		s.outbox.Kick()
		s.logger.Info("Booking created", zap.String("bookingID", booking.ID), zap.Int("numberOfPets", booking.NumberOfPets))
	}
	return &BookingView{Booking: booking, ServiceName: service.Name}, deduplicated, nil
}

func (s *BookingService) enqueueCreated(tx db.Tx, booking *models.Booking, serviceName string) error {
	owner := &models.OutboxEvent{
		TargetRef: booking.UserID,
		Title:     "Booking Created",
		Body:      fmt.Sprintf("Your booking for %s on %s has been created.", serviceName, booking.BookingDate),
		Type:      models.NotificationBookingCreated,
		RelatedID: booking.ID,
	}
	if err := s.outbox.EnqueueTx(tx, owner); err != nil {
		return err
	}
	if booking.ProviderID == "" {
		return nil
	}
	provider := &models.OutboxEvent{
		TargetRef: booking.ProviderID,
		Title:     "New Booking Request",
		Body:      fmt.Sprintf("You have a new booking request for %s on %s.", serviceName, booking.BookingDate),
		Type:      models.NotificationBookingRequest,
		RelatedID: booking.ID,
	}
	return s.outbox.EnqueueTx(tx, provider)
}

// bookingPetIDs returns the de-duplicated pet set of a request, primary pet first.
func bookingPetIDs(petID string, petIDs []string) []string {
	out := []string{petID}
	seen := map[string]bool{petID: true}
	for _, id := range petIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// bookingKey is the idempotency key of a booking request: a hash of the owner, service,
// date and the sorted pet set.
func bookingKey(userID, serviceID, bookingDate string, petIDs []string) string {
	sorted := append([]string(nil), petIDs...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join([]string{userID, serviceID, bookingDate, strings.Join(sorted, ",")}, "|")))
	return hex.EncodeToString(sum[:])
}

// GetBooking retrieves a booking with its service name.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*BookingView, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	views := s.withServiceNames(ctx, []*models.Booking{booking})
	return views[0], nil
}

// ListForOwner returns a pet owner's bookings.
func (s *BookingService) ListForOwner(ctx context.Context, userID string) ([]*BookingView, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withServiceNames(ctx, bookings), nil
}

// ListForProvider returns the bookings made with a provider.
func (s *BookingService) ListForProvider(ctx context.Context, providerID string) ([]*BookingView, error) {
	bookings, err := s.bookings.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return s.withServiceNames(ctx, bookings), nil
}

// withServiceNames looks up each distinct service once. Missing services leave the name empty.
func (s *BookingService) withServiceNames(ctx context.Context, bookings []*models.Booking) []*BookingView {
	names := make(map[string]string)
	views := make([]*BookingView, 0, len(bookings))
	for _, b := range bookings {
		name, ok := names[b.ServiceID]
		if !ok {
			if svc, err := s.services.GetByID(ctx, b.ServiceID); err == nil {
				name = svc.Name
			} else if !errors.Is(err, db.ErrNotFound) {
				s.logger.Warn("Failed to load service for booking", zap.String("bookingID", b.ID), zap.Error(err))
			}
			names[b.ServiceID] = name
		}
		views = append(views, &BookingView{Booking: b, ServiceName: name})
	}
	return views
}

// UpdateStatus validates and stores a new booking status. Confirming a booking notifies the owner.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID, rawStatus string) (*BookingView, error) {
	status := models.BookingStatus(rawStatus)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q, must be one of pending, confirmed, cancelled, completed", ErrInvalidStatus, rawStatus)
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	previous := booking.Status

	if s.opts.StrictTransitions {
		if err := checkTransition(previous, status); err != nil {
			return nil, err
		}
	}

	if err := s.bookings.Update(ctx, bookingID, map[string]interface{}{"status": string(status)}); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, err
	}
	booking.Status = status
	booking.UpdatedAt = s.now().UTC()

	views := s.withServiceNames(ctx, []*models.Booking{booking})
	if status == models.BookingStatusConfirmed && previous != models.BookingStatusConfirmed {
		event := &models.OutboxEvent{
			TargetRef: booking.UserID,
			Title:     "Booking Confirmed",
			Body:      fmt.Sprintf("Your booking for %s on %s has been confirmed.", views[0].ServiceName, booking.BookingDate),
			Type:      models.NotificationBookingConfirmed,
			RelatedID: booking.ID,
		}
		if err := s.outbox.Enqueue(ctx, event); err != nil {
			s.logger.Error("Failed to enqueue booking confirmation", zap.String("bookingID", bookingID), zap.Error(err))
		}
	}
	return views[0], nil
}

// DeleteBooking removes the booking document without checking that it exists.
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	return s.bookings.Delete(ctx, bookingID)
}

func (s *BookingService) getBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBookingNotFound, bookingID)
		}
		return nil, err
	}
	return booking, nil
}
