package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

// StoreOutboxRepository implements OutboxRepository on a Store.
type StoreOutboxRepository struct {
	store  Store
	logger *zap.Logger
}

// NewOutboxRepository creates an OutboxRepository backed by store.
func NewOutboxRepository(store Store, logger *zap.Logger) *StoreOutboxRepository {
	return &StoreOutboxRepository{store: store, logger: logger}
}

// Enqueue stores a pending event outside any transaction.
func (r *StoreOutboxRepository) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	prepareEvent(event)
	if _, err := r.store.Create(ctx, OutboxCollection, event.ID, event); err != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", err)
	}
	return nil
}

// EnqueueTx stores a pending event as part of tx.
func (r *StoreOutboxRepository) EnqueueTx(tx Tx, event *models.OutboxEvent) error {
	prepareEvent(event)
	if err := tx.Create(OutboxCollection, event.ID, event); err != nil {
		return fmt.Errorf("failed to enqueue outbox event: %w", err)
	}
	return nil
}

func prepareEvent(event *models.OutboxEvent) {
	if event.ID == "" {
		event.ID = NewDocumentID()
	}
	if event.Status == "" {
		event.Status = models.OutboxPending
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.NextAttemptAt.IsZero() {
		event.NextAttemptAt = event.CreatedAt
	}
}

// ListDue filters nextAttemptAt in memory; the store only supports equality filters.
func (r *StoreOutboxRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.OutboxEvent, error) {
	snaps, err := r.store.Find(ctx, OutboxCollection, Where("status", models.OutboxPending))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending outbox events: %w", err)
	}
	events := decodeAll(snaps, func(e *models.OutboxEvent, id string) { e.ID = id }, func(id string, err error) {
		r.logger.Error("Error decoding outbox event, skipping", zap.String("eventID", id), zap.Error(err))
	})

	due := events[:0]
	for _, e := range events {
		if !e.NextAttemptAt.After(now) {
			due = append(due, e)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// Update merges delivery state into an event.
func (r *StoreOutboxRepository) Update(ctx context.Context, eventID string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, OutboxCollection, eventID, fields); err != nil {
		return fmt.Errorf("failed to update outbox event '%s': %w", eventID, err)
	}
	return nil
}
