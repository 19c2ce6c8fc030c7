package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"petcare-backend-go/internal/config"
	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/observability"
)

const testWebhookSecret = "whsec_api_test"

type fakeCheckout struct {
	created []*stripe.CheckoutSessionParams
}

func (f *fakeCheckout) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.created = append(f.created, params)
	id := fmt.Sprintf("cs_test_%d", len(f.created))
	return &stripe.CheckoutSession{ID: id, URL: "https://checkout.stripe.com/c/pay/" + id}, nil
}

func (f *fakeCheckout) Get(id string, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, errors.New("stripe unavailable in tests")
}

type fakeCompleter struct {
	reply string
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply},
	}}}, nil
}

// testServer is the full router over an in-memory Badger store.
type testServer struct {
	router   *gin.Engine
	store    *db.BadgerStore
	outbox   *core.OutboxWorker
	checkout *fakeCheckout
	metrics  *observability.Metrics
	logger   *zap.Logger
}

type serverOption func(*serverDeps)

type serverDeps struct {
	llm core.ChatCompleter
}

func withAssistant(reply string) serverOption {
	return func(d *serverDeps) { d.llm = &fakeCompleter{reply: reply} }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	deps := &serverDeps{}
	for _, o := range opts {
		o(deps)
	}

	logger := zaptest.NewLogger(t)
	store, err := db.OpenBadgerStore(db.BadgerOptions{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	users := db.NewUserRepository(store, logger)
	pets := db.NewPetRepository(store, logger)
	services := db.NewServiceRepository(store, logger)
	bookings := db.NewBookingRepository(store, logger)
	payments := db.NewPaymentRepository(store, logger)
	notificationRepo := db.NewNotificationRepository(store, logger)
	outboxRepo := db.NewOutboxRepository(store, logger)
	realtimeStore := db.NewMemoryRealtimeStore()
	metrics := observability.NewMetrics()

	notifications := core.NewNotificationService(users, notificationRepo, core.NotificationChannels{}, logger)
	outbox := core.NewOutboxWorker(outboxRepo, notifications, metrics, core.OutboxOptions{}, logger)
	catalog := core.NewCatalogService(services, users, logger)
	checkout := &fakeCheckout{}

	assistant := core.NewAssistantService(deps.llm, core.NewMemorySessionStore(0, 0), catalog, "gemini-test", logger)

	svc := Services{
		Users:         core.NewUserService(users, nil, logger),
		Providers:     core.NewProviderService(users, services, logger),
		Pets:          core.NewPetService(pets),
		Catalog:       catalog,
		Bookings:      core.NewBookingService(store, bookings, services, outbox, metrics, core.BookingOptions{DedupWindow: time.Minute}, logger),
		Payments:      core.NewPaymentService(checkout, store, payments, bookings, outbox, metrics, core.PaymentOptions{WebhookSecret: testWebhookSecret, Currency: "usd", FrontendURL: "http://localhost:3000"}, logger),
		Notifications: notifications,
		Locations:     core.NewLocationService(realtimeStore, nil, logger),
		Chats:         core.NewChatService(realtimeStore),
		Assistant:     assistant,
	}

	cfg := &config.Config{AIRateLimitPerMinute: 30}
	router := gin.New()
	SetupRoutes(router, cfg, logger, svc, nil, nil, metrics)

	return &testServer{router: router, store: store, outbox: outbox, checkout: checkout, metrics: metrics, logger: logger}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

// signStripePayload builds a Stripe-Signature header for payload.
func signStripePayload(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
