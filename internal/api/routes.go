package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"petcare-backend-go/internal/config"
	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/middleware"
	"petcare-backend-go/internal/observability"
	"petcare-backend-go/internal/realtime"
)

// Services bundles the core services the HTTP layer dispatches to.
type Services struct {
	Users         *core.UserService
	Providers     *core.ProviderService
	Pets          *core.PetService
	Catalog       *core.CatalogService
	Bookings      *core.BookingService
	Payments      *core.PaymentService
	Notifications *core.NotificationService
	Locations     *core.LocationService
	Chats         *core.ChatService
	Assistant     *core.AssistantService
}

// SetupRoutes registers the API under /api together with /ws, /metrics and /health.
// Global middleware (request logging, recovery, CORS) is applied by the caller.
// authMW may be nil when no Firebase Auth client is configured.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	svc Services,
	authMW *middleware.AuthMiddleware,
	hub *realtime.Hub,
	metrics *observability.Metrics,
) {
	userHandler := NewUserHandler(svc.Users, svc.Providers, logger)
	petHandler := NewPetHandler(svc.Pets, logger)
	serviceHandler := NewServiceHandler(svc.Catalog, logger)
	bookingHandler := NewBookingHandler(svc.Bookings, logger)
	paymentHandler := NewPaymentHandler(svc.Payments, logger)
	realtimeHandler := NewRealtimeHandler(svc.Locations, svc.Chats, logger)
	notificationHandler := NewNotificationHandler(svc.Notifications, logger)
	assistantHandler := NewAssistantHandler(svc.Assistant, logger)

	// Mutating routes require a Firebase ID token only when AUTH_REQUIRED is set.
	protect := authMW.Optional(appConfig.AuthRequired)
	aiLimiter := middleware.NewRateLimiter(appConfig.AIRateLimitPerMinute)

	api := router.Group("/api")
	{
		api.POST("/users", userHandler.Register)
		api.GET("/users/:id", userHandler.GetUser)
		api.PUT("/users/:id/fcm-token", protect, userHandler.UpdateFCMToken)
		api.POST("/login", userHandler.Login)

		providers := api.Group("/providers")
		{
			providers.GET("", userHandler.NearbyProviders)
			providers.GET("/:id/profile", userHandler.GetProviderProfile)
			providers.PUT("/:id/profile", protect, userHandler.UpdateProviderProfile)
		}

		pets := api.Group("/pets")
		{
			pets.GET("", petHandler.ListPets)
			pets.GET("/:id", petHandler.GetPet)
			pets.POST("", protect, petHandler.CreatePet)
			pets.PUT("/:id", protect, petHandler.UpdatePet)
			pets.DELETE("/:id", protect, petHandler.DeletePet)
		}

		services := api.Group("/services")
		{
			services.GET("", serviceHandler.ListServices)
			services.GET("/:id", serviceHandler.GetService)
			services.POST("", protect, serviceHandler.CreateService)
			services.DELETE("/:id", protect, serviceHandler.DeleteService)
		}

		bookings := api.Group("/bookings")
		{
			bookings.POST("", protect, bookingHandler.CreateBooking)
			bookings.GET("/pet-owner/:id", bookingHandler.ListForPetOwner)
			bookings.GET("/provider/:id", bookingHandler.ListForProvider)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PUT("/:id", protect, bookingHandler.UpdateStatus)
			bookings.DELETE("/:id", protect, bookingHandler.DeleteBooking)
		}

		api.POST("/create-checkout-session", protect, paymentHandler.CreateCheckoutSession)
		// Stripe signs webhook requests; no auth middleware here.
		api.POST("/webhook", paymentHandler.HandleStripeWebhook)
		api.GET("/payment-status/:sessionId", paymentHandler.GetPaymentStatus)
		api.GET("/payments/:userId", paymentHandler.ListPayments)

		api.POST("/update-pet-location", realtimeHandler.UpdatePetLocation)
		api.GET("/pet-location", realtimeHandler.GetPetLocation)
		api.POST("/chats/:chatId/messages", realtimeHandler.SendChatMessage)
		api.GET("/chats/:chatId/messages", realtimeHandler.ListChatMessages)

		api.GET("/notifications/:userId", notificationHandler.ListNotifications)
		api.PUT("/notifications/:id/read", notificationHandler.MarkRead)

		api.POST("/generate-ai-response", aiLimiter.Middleware(), assistantHandler.GenerateResponse)
	}

	if hub != nil {
		router.GET("/ws", hub.HandleWebSocket)
	}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Pet care backend is healthy."})
	})

	logger.Info("API routes configured under /api, /ws, /metrics and /health")
}
