package core

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
	"petcare-backend-go/internal/observability"
)

// Deliverer performs the side effect recorded by an outbox event.
type Deliverer interface {
	Deliver(ctx context.Context, event *models.OutboxEvent) error
}

// OutboxOptions tunes the outbox worker.
type OutboxOptions struct {
	PollInterval time.Duration
	MaxAttempts  int
	BaseBackoff  time.Duration
	BatchSize    int
}

func (o OutboxOptions) withDefaults() OutboxOptions {
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	return o
}

// OutboxWorker drains pending outbox events on a ticker and on demand.
// Delivery is at least once.
type OutboxWorker struct {
	repo      db.OutboxRepository
	deliverer Deliverer
	metrics   *observability.Metrics
	logger    *zap.Logger
	opts      OutboxOptions
	kick      chan struct{}
	now       func() time.Time
}

// NewOutboxWorker creates an OutboxWorker. Zero options take their defaults.
func NewOutboxWorker(repo db.OutboxRepository, deliverer Deliverer, metrics *observability.Metrics, opts OutboxOptions, logger *zap.Logger) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		deliverer: deliverer,
		metrics:   metrics,
		logger:    logger.Named("outbox"),
		opts:      opts.withDefaults(),
		kick:      make(chan struct{}, 1),
		now:       time.Now,
	}
}

// Enqueue stores an event for delivery and wakes the worker.
func (w *OutboxWorker) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	w.stamp(event)
	if err := w.repo.Enqueue(ctx, event); err != nil {
		return err
	}
	w.Kick()
	return nil
}

// EnqueueTx records the event in tx. Call Kick once the transaction has committed.
func (w *OutboxWorker) EnqueueTx(tx db.Tx, event *models.OutboxEvent) error {
	w.stamp(event)
	return w.repo.EnqueueTx(tx, event)
}

func (w *OutboxWorker) stamp(event *models.OutboxEvent) {
	if event.Kind == "" {
		event.Kind = models.OutboxKindNotification
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = w.now().UTC()
	}
}

// Kick wakes the worker without blocking the caller.
func (w *OutboxWorker) Kick() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Run drains the outbox until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	w.logger.Info("Outbox worker started", zap.Duration("pollInterval", w.opts.PollInterval), zap.Int("maxAttempts", w.opts.MaxAttempts))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Outbox worker stopped")
			return
		case <-ticker.C:
		case <-w.kick:
		}
		if err := w.Drain(ctx); err != nil {
			w.logger.Warn("Outbox drain finished with errors", zap.Error(err))
		}
	}
}

// Drain delivers every due event once and returns the delivery errors aggregated.
func (w *OutboxWorker) Drain(ctx context.Context) error {
	events, err := w.repo.ListDue(ctx, w.now().UTC(), w.opts.BatchSize)
	if err != nil {
		return err
	}

	var result *multierror.Error
	for _, event := range events {
		if ctx.Err() != nil {
			break
		}
		if err := w.process(ctx, event); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (w *OutboxWorker) process(ctx context.Context, event *models.OutboxEvent) error {
	deliverErr := w.deliverer.Deliver(ctx, event)
	if deliverErr == nil {
		w.metrics.ObserveOutboxDelivery("delivered")
		return w.repo.Update(ctx, event.ID, map[string]interface{}{
			"status":    models.OutboxDelivered,
			"attempts":  event.Attempts + 1,
			"lastError": "",
		})
	}

	attempts := event.Attempts + 1
	fields := map[string]interface{}{
		"attempts":  attempts,
		"lastError": deliverErr.Error(),
	}
	if attempts >= w.opts.MaxAttempts {
		fields["status"] = models.OutboxFailed
		w.metrics.ObserveOutboxDelivery("failed")
		w.logger.Error("Outbox event failed permanently",
			zap.String("eventID", event.ID), zap.String("type", event.Type), zap.Int("attempts", attempts), zap.Error(deliverErr))
	} else {
		fields["nextAttemptAt"] = w.now().UTC().Add(w.backoff(attempts))
		w.metrics.ObserveOutboxDelivery("retry")
		w.logger.Warn("Outbox delivery failed, will retry",
			zap.String("eventID", event.ID), zap.Int("attempts", attempts), zap.Error(deliverErr))
	}

	if err := w.repo.Update(ctx, event.ID, fields); err != nil {
		return multierror.Append(fmt.Errorf("event %s: %w", event.ID, deliverErr), err)
	}
	return fmt.Errorf("event %s: %w", event.ID, deliverErr)
}

// backoff doubles the base delay for every failed attempt.
func (w *OutboxWorker) backoff(attempts int) time.Duration {
	return w.opts.BaseBackoff * time.Duration(1<<uint(attempts-1))
}
