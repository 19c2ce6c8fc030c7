package db

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

// StoreNotificationRepository implements NotificationRepository on a Store.
type StoreNotificationRepository struct {
	store  Store
	logger *zap.Logger
}

// NewNotificationRepository creates a NotificationRepository backed by store.
func NewNotificationRepository(store Store, logger *zap.Logger) *StoreNotificationRepository {
	return &StoreNotificationRepository{store: store, logger: logger}
}

// Create stores a notification under its precomputed ID.
func (r *StoreNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	id, err := r.store.Create(ctx, NotificationsCollection, n.ID, n)
	if err != nil {
		return fmt.Errorf("failed to create notification '%s': %w", n.ID, err)
	}
	n.ID = id
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *StoreNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	snaps, err := r.store.Find(ctx, NotificationsCollection, Where("userId", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user '%s': %w", userID, err)
	}
	notifications := decodeAll(snaps, func(n *models.Notification, id string) { n.ID = id }, func(id string, err error) {
		r.logger.Error("Error decoding notification document, skipping", zap.String("notificationID", id), zap.Error(err))
	})
	sort.SliceStable(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

// MarkRead flags a notification as read.
func (r *StoreNotificationRepository) MarkRead(ctx context.Context, notificationID string) error {
	if err := r.store.Update(ctx, NotificationsCollection, notificationID, map[string]interface{}{"read": true}); err != nil {
		return fmt.Errorf("failed to mark notification '%s' read: %w", notificationID, err)
	}
	return nil
}
