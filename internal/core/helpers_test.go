package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
	"petcare-backend-go/internal/observability"
)

// testEnv wires real repositories over an in-memory Badger store.
type testEnv struct {
	store         *db.BadgerStore
	users         *db.StoreUserRepository
	pets          *db.StorePetRepository
	services      *db.StoreServiceRepository
	bookings      *db.StoreBookingRepository
	payments      *db.StorePaymentRepository
	notifications *db.StoreNotificationRepository
	outboxRepo    *db.StoreOutboxRepository
	outbox        *OutboxWorker
	deliverer     *recordingDeliverer
	metrics       *observability.Metrics
	logger        *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store, err := db.OpenBadgerStore(db.BadgerOptions{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	env := &testEnv{
		store:         store,
		users:         db.NewUserRepository(store, logger),
		pets:          db.NewPetRepository(store, logger),
		services:      db.NewServiceRepository(store, logger),
		bookings:      db.NewBookingRepository(store, logger),
		payments:      db.NewPaymentRepository(store, logger),
		notifications: db.NewNotificationRepository(store, logger),
		outboxRepo:    db.NewOutboxRepository(store, logger),
		deliverer:     &recordingDeliverer{},
		metrics:       observability.NewMetrics(),
		logger:        logger,
	}
	env.outbox = NewOutboxWorker(env.outboxRepo, env.deliverer, env.metrics, OutboxOptions{MaxAttempts: 3, BaseBackoff: time.Second}, logger)
	return env
}

func (e *testEnv) createService(t *testing.T, svc *models.Service) *models.Service {
	t.Helper()
	id, err := e.services.Create(context.Background(), svc)
	require.NoError(t, err)
	svc.ID = id
	return svc
}

func (e *testEnv) createUser(t *testing.T, user *models.User) *models.User {
	t.Helper()
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

// pendingOutbox returns the pending outbox events in creation order.
func (e *testEnv) pendingOutbox(t *testing.T) []*models.OutboxEvent {
	t.Helper()
	events, err := e.outboxRepo.ListDue(context.Background(), time.Now().Add(24*time.Hour), 0)
	require.NoError(t, err)
	return events
}

type recordingDeliverer struct {
	mu       sync.Mutex
	events   []*models.OutboxEvent
	failures int // remaining deliveries to fail
}

func (d *recordingDeliverer) Deliver(_ context.Context, event *models.OutboxEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failures > 0 {
		d.failures--
		return errDeliveryFailed
	}
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDeliverer) delivered() []*models.OutboxEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*models.OutboxEvent(nil), d.events...)
}

var errDeliveryFailed = errors.New("push gateway unavailable")

type fakePushSender struct {
	mu       sync.Mutex
	messages []*messaging.Message
}

func (f *fakePushSender) Send(_ context.Context, message *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return "projects/test/messages/1", nil
}

type fakePublisher struct {
	mu     sync.Mutex
	queues []string
	bodies [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, queueName string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues = append(f.queues, queueName)
	f.bodies = append(f.bodies, body)
	return nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakeBroadcaster) Broadcast(event string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
