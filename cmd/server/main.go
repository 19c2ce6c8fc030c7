package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
	"github.com/stripe/stripe-go/v74/client"
	"go.uber.org/zap"

	"petcare-backend-go/internal/api"
	"petcare-backend-go/internal/config"
	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/middleware"
	"petcare-backend-go/internal/observability"
	"petcare-backend-go/internal/realtime"
	"petcare-backend-go/pkg/cache"
	"petcare-backend-go/pkg/messagequeue"
)

func main() {
	// .env is a development convenience; release deployments inject the environment.
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	zapLogger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded", zap.String("storeBackend", appConfig.StoreBackend))

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()

	// --- Firebase and the document store ---
	var firebaseClients *db.FirebaseClients
	if appConfig.StoreBackend == config.BackendFirestore || appConfig.FirebaseProjectID != "" {
		firebaseClients, err = db.InitFirebase(initCtx, appConfig, zapLogger)
		if err != nil {
			if appConfig.StoreBackend == config.BackendFirestore {
				zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
			}
			zapLogger.Warn("Firebase unavailable; running without auth, push and realtime database", zap.Error(err))
			firebaseClients = nil
		}
	}

	var store db.Store
	if appConfig.StoreBackend == config.BackendBadger {
		store, err = db.OpenBadgerStore(db.BadgerOptions{Path: appConfig.BadgerPath}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to open Badger store", zap.Error(err))
		}
	} else {
		store = db.NewFirestoreStore(firebaseClients.Firestore, zapLogger)
	}
	defer store.Close()

	var realtimeStore db.RealtimeStore
	if firebaseClients != nil && firebaseClients.Database != nil {
		realtimeStore = db.NewFirebaseRealtimeStore(firebaseClients.Database)
	} else {
		zapLogger.Warn("FIREBASE_DATABASE_URL not configured; pet locations and chats are kept in memory")
		realtimeStore = db.NewMemoryRealtimeStore()
	}

	// --- Repositories ---
	userRepo := db.NewUserRepository(store, zapLogger)
	petRepo := db.NewPetRepository(store, zapLogger)
	serviceRepo := db.NewServiceRepository(store, zapLogger)
	bookingRepo := db.NewBookingRepository(store, zapLogger)
	paymentRepo := db.NewPaymentRepository(store, zapLogger)
	notificationRepo := db.NewNotificationRepository(store, zapLogger)
	outboxRepo := db.NewOutboxRepository(store, zapLogger)

	// --- Optional integrations ---
	channels := core.NotificationChannels{QueueName: appConfig.AMQPNotificationQueue}
	if firebaseClients != nil && firebaseClients.Messaging != nil {
		channels.Push = firebaseClients.Messaging
	}
	if appConfig.AMQPURL != "" {
		publisher, err := messagequeue.NewRabbitMQPublisher(messagequeue.RabbitMQConfig{URL: appConfig.AMQPURL}, zapLogger)
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable; notification events will not be published", zap.Error(err))
		} else {
			defer publisher.Close()
			channels.Publisher = publisher
		}
	}

	var sessions core.SessionStore = core.NewMemorySessionStore(core.DefaultMaxSessionMessages, core.DefaultMaxSessions)
	if appConfig.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(initCtx, cache.RedisConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		}, zapLogger)
		if err != nil {
			zapLogger.Warn("Redis unavailable; assistant history is kept in memory", zap.Error(err))
		} else {
			defer rdb.Close()
			sessions = cache.NewRedisSessionStore(rdb, core.DefaultMaxSessionMessages, 24*time.Hour)
		}
	}

	var llm core.ChatCompleter
	if appConfig.GeminiAPIKey != "" {
		openaiConfig := openai.DefaultConfig(appConfig.GeminiAPIKey)
		openaiConfig.BaseURL = strings.TrimRight(appConfig.GeminiBaseURL, "/")
		llm = openai.NewClientWithConfig(openaiConfig)
	} else {
		zapLogger.Warn("GEMINI_API_KEY not configured; the assistant endpoint will return 503")
	}

	var verifier core.TokenVerifier
	var authMW *middleware.AuthMiddleware
	if firebaseClients != nil && firebaseClients.Auth != nil {
		verifier = firebaseClients.Auth
		authMW = middleware.NewAuthMiddleware(firebaseClients.Auth, zapLogger)
	}

	stripeClient := &client.API{}
	stripeClient.Init(appConfig.StripeSecretKey, nil)

	// --- Services ---
	metrics := observability.NewMetrics()
	hub := realtime.NewHub(firstOrigin(appConfig.FrontendURL), zapLogger)

	notificationService := core.NewNotificationService(userRepo, notificationRepo, channels, zapLogger)
	outboxWorker := core.NewOutboxWorker(outboxRepo, notificationService, metrics, core.OutboxOptions{
		PollInterval: appConfig.OutboxPollInterval,
		MaxAttempts:  appConfig.OutboxMaxAttempts,
	}, zapLogger)
	catalogService := core.NewCatalogService(serviceRepo, userRepo, zapLogger)

	services := api.Services{
		Users:     core.NewUserService(userRepo, verifier, zapLogger),
		Providers: core.NewProviderService(userRepo, serviceRepo, zapLogger),
		Pets:      core.NewPetService(petRepo),
		Catalog:   catalogService,
		Bookings: core.NewBookingService(store, bookingRepo, serviceRepo, outboxWorker, metrics, core.BookingOptions{
			DedupWindow:       appConfig.BookingDedupWindow,
			StrictTransitions: appConfig.BookingStrictTransitions,
		}, zapLogger),
		Payments: core.NewPaymentService(stripeClient.CheckoutSessions, store, paymentRepo, bookingRepo, outboxWorker, metrics, core.PaymentOptions{
			WebhookSecret: appConfig.StripeWebhookSecret,
			Currency:      appConfig.StripeCurrency,
			FrontendURL:   firstOrigin(appConfig.FrontendURL),
		}, zapLogger),
		Notifications: notificationService,
		Locations:     core.NewLocationService(realtimeStore, hub, zapLogger),
		Chats:         core.NewChatService(realtimeStore),
		Assistant:     core.NewAssistantService(llm, sessions, catalogService, appConfig.GeminiModel, zapLogger),
	}

	// --- HTTP engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger, metrics))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig.FrontendURL))

	api.SetupRoutes(router, appConfig, zapLogger, services, authMW, hub, metrics)

	// --- Background workers ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		outboxWorker.Run(workerCtx)
	}()
	go hub.Run()

	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	hub.Close()
	stopWorkers()
	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
		zapLogger.Warn("Outbox worker did not stop before the shutdown deadline")
	}
	if firebaseClients != nil && appConfig.StoreBackend != config.BackendFirestore {
		firebaseClients.Close()
	}

	zapLogger.Info("Server exiting gracefully")
}

func newLogger(appConfig *config.Config) (*zap.Logger, error) {
	if appConfig.IsRelease() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// firstOrigin returns the first entry of a comma separated FRONTEND_URL.
func firstOrigin(frontendURL string) string {
	origin, _, _ := strings.Cut(frontendURL, ",")
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
