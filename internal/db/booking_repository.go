package db

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

// StoreBookingRepository implements BookingRepository on a Store.
// Bookings are created by the booking service inside a transaction, not through this repository.
type StoreBookingRepository struct {
	store  Store
	logger *zap.Logger
}

// NewBookingRepository creates a BookingRepository backed by store.
func NewBookingRepository(store Store, logger *zap.Logger) *StoreBookingRepository {
	return &StoreBookingRepository{store: store, logger: logger}
}

// GetByID retrieves a booking by ID. Returns ErrNotFound if it does not exist.
func (r *StoreBookingRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.store.Get(ctx, BookingsCollection, bookingID, &booking); err != nil {
		return nil, fmt.Errorf("booking with ID '%s': %w", bookingID, err)
	}
	booking.ID = bookingID
	return &booking, nil
}

// ListByUser returns the pet owner's bookings, newest first.
func (r *StoreBookingRepository) ListByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	return r.list(ctx, Where("userId", userID))
}

// ListByProvider returns the provider's bookings, newest first.
func (r *StoreBookingRepository) ListByProvider(ctx context.Context, providerID string) ([]*models.Booking, error) {
	return r.list(ctx, Where("providerId", providerID))
}

// Update merges fields into a booking document.
func (r *StoreBookingRepository) Update(ctx context.Context, bookingID string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, BookingsCollection, bookingID, fields); err != nil {
		return fmt.Errorf("failed to update booking with ID '%s': %w", bookingID, err)
	}
	return nil
}

// Delete removes a booking.
func (r *StoreBookingRepository) Delete(ctx context.Context, bookingID string) error {
	if err := r.store.Delete(ctx, BookingsCollection, bookingID); err != nil {
		return fmt.Errorf("failed to delete booking with ID '%s': %w", bookingID, err)
	}
	return nil
}

func (r *StoreBookingRepository) list(ctx context.Context, filter Filter) ([]*models.Booking, error) {
	snaps, err := r.store.Find(ctx, BookingsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings by %s: %w", filter.Field, err)
	}
	bookings := decodeAll(snaps, func(b *models.Booking, id string) { b.ID = id }, func(id string, err error) {
		r.logger.Error("Error decoding booking document, skipping", zap.String("bookingID", id), zap.Error(err))
	})
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}
