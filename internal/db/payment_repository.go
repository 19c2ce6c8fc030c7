package db

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

// StorePaymentRepository implements PaymentRepository on a Store.
type StorePaymentRepository struct {
	store  Store
	logger *zap.Logger
}

// NewPaymentRepository creates a PaymentRepository backed by store.
func NewPaymentRepository(store Store, logger *zap.Logger) *StorePaymentRepository {
	return &StorePaymentRepository{store: store, logger: logger}
}

// Create stores a payment under its Stripe session ID.
func (r *StorePaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		return errors.New("payment ID cannot be empty for Create operation")
	}
	if _, err := r.store.Create(ctx, PaymentsCollection, payment.ID, payment); err != nil {
		return fmt.Errorf("failed to create payment '%s': %w", payment.ID, err)
	}
	return nil
}

// GetByID retrieves a payment by session ID. Returns ErrNotFound if it does not exist.
func (r *StorePaymentRepository) GetByID(ctx context.Context, sessionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.store.Get(ctx, PaymentsCollection, sessionID, &payment); err != nil {
		return nil, fmt.Errorf("payment '%s': %w", sessionID, err)
	}
	payment.ID = sessionID
	return &payment, nil
}

// ListByUser returns the user's payments, newest first.
func (r *StorePaymentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	snaps, err := r.store.Find(ctx, PaymentsCollection, Where("userId", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for user '%s': %w", userID, err)
	}
	payments := decodeAll(snaps, func(p *models.Payment, id string) { p.ID = id }, func(id string, err error) {
		r.logger.Error("Error decoding payment document, skipping", zap.String("sessionID", id), zap.Error(err))
	})
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

// Update merges fields into a payment document.
func (r *StorePaymentRepository) Update(ctx context.Context, sessionID string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, PaymentsCollection, sessionID, fields); err != nil {
		return fmt.Errorf("failed to update payment '%s': %w", sessionID, err)
	}
	return nil
}
