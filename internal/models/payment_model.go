package models

import "time"

// Payment states mirror the Stripe Checkout Session lifecycle.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentExpired   = "expired"
)

// Payment records a Stripe Checkout Session. The document ID is the session ID.
type Payment struct {
	ID              string     `json:"id" firestore:"-"`
	StripeSessionID string     `json:"stripeSessionId" firestore:"stripeSessionId"`
	UserID          string     `json:"userId" firestore:"userId"`
	ServiceID       string     `json:"serviceId" firestore:"serviceId"`
	ServiceName     string     `json:"serviceName" firestore:"serviceName"`
	BookingID       string     `json:"bookingId,omitempty" firestore:"bookingId,omitempty"`
	Amount          int64      `json:"amount" firestore:"amount"` // smallest currency unit
	Currency        string     `json:"currency" firestore:"currency"`
	Status          string     `json:"status" firestore:"status"`
	CreatedAt       time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt       time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
	CompletedAt     *time.Time `json:"completedAt" firestore:"completedAt"`
}
