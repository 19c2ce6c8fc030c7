package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Valid reports whether s is one of the four known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// PaymentStatus of a booking as seen by the owner.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusUnpaid  = "unpaid"
)

// Booking covers one service appointment for one or more pets.
// A multi-pet request always produces a single booking document.
type Booking struct {
	ID              string        `json:"id" firestore:"-"`
	UserID          string        `json:"userId" firestore:"userId"`
	ProviderID      string        `json:"providerId" firestore:"providerId"`
	ServiceID       string        `json:"serviceId" firestore:"serviceId"`
	PetID           string        `json:"petId" firestore:"petId"`
	PetIDs          []string      `json:"petIds" firestore:"petIds"`
	PetNames        []string      `json:"petNames" firestore:"petNames"`
	BookingDate     string        `json:"bookingDate" firestore:"bookingDate"`
	ScheduledDate   string        `json:"scheduledDate" firestore:"scheduledDate"`
	Status          BookingStatus `json:"status" firestore:"status"`
	PaymentStatus   string        `json:"paymentStatus" firestore:"paymentStatus"`
	StripeSessionID *string       `json:"stripeSessionId" firestore:"stripeSessionId"`
	TotalPrice      float64       `json:"totalPrice" firestore:"totalPrice"`
	BasePrice       float64       `json:"basePrice" firestore:"basePrice"`
	NumberOfPets    int           `json:"numberOfPets" firestore:"numberOfPets"`
	Notes           string        `json:"notes,omitempty" firestore:"notes,omitempty"`
	CreatedAt       time.Time     `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt       time.Time     `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// BookingKey is the idempotency record for a booking request. It points at the booking
// created for a given (user, service, date, pet set) until ExpiresAt.
type BookingKey struct {
	BookingID string    `json:"bookingId" firestore:"bookingId"`
	ExpiresAt time.Time `json:"expiresAt" firestore:"expiresAt"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
