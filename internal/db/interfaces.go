package db

import (
	"context"
	"time"

	"petcare-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// Create stores the user under user.ID.
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, userID string, fields map[string]interface{}) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByOriginalID matches the legacy originalId field. The value's type matters:
	// a number only matches numbers and a string only matches strings.
	FindByOriginalID(ctx context.Context, originalID interface{}) (*models.User, error)
	ListProviders(ctx context.Context) ([]*models.User, error)
	// NextLegacyID allocates the next numeric ID for users registered without a Firebase UID.
	NextLegacyID(ctx context.Context) (int64, error)
}

// PetRepository defines the interface for pet data storage operations.
type PetRepository interface {
	Create(ctx context.Context, pet *models.Pet) (string, error)
	GetByID(ctx context.Context, petID string) (*models.Pet, error)
	List(ctx context.Context, ownerID string) ([]*models.Pet, error)
	Update(ctx context.Context, petID string, fields map[string]interface{}) error
	Delete(ctx context.Context, petID string) error
}

// ServiceRepository defines the interface for the provider service catalogue.
type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) (string, error)
	GetByID(ctx context.Context, serviceID string) (*models.Service, error)
	// List returns every service, or only those of providerID when it is non-empty.
	List(ctx context.Context, providerID string) ([]*models.Service, error)
	ListActive(ctx context.Context) ([]*models.Service, error)
	Delete(ctx context.Context, serviceID string) error
}

// BookingRepository defines the interface for booking data storage operations.
type BookingRepository interface {
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]*models.Booking, error)
	Update(ctx context.Context, bookingID string, fields map[string]interface{}) error
	Delete(ctx context.Context, bookingID string) error
}

// PaymentRepository defines the interface for Stripe payment records.
type PaymentRepository interface {
	// Create stores the payment under payment.ID, the Stripe session ID.
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, sessionID string) (*models.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Payment, error)
	Update(ctx context.Context, sessionID string, fields map[string]interface{}) error
}

// NotificationRepository defines the interface for in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
}

// OutboxRepository stores side effects recorded next to primary writes.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event *models.OutboxEvent) error
	// EnqueueTx records the event inside an existing transaction.
	EnqueueTx(tx Tx, event *models.OutboxEvent) error
	// ListDue returns pending events whose next attempt is not after now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.OutboxEvent, error)
	Update(ctx context.Context, eventID string, fields map[string]interface{}) error
}
