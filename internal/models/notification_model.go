package models

import "time"

// Notification types written by the backend.
const (
	NotificationBookingCreated   = "booking_created"
	NotificationBookingRequest   = "booking_request"
	NotificationBookingConfirmed = "booking_confirmed"
	NotificationPaymentReceived  = "payment_received"
)

// Notification is an in-app message for a user. ID has the form "<uid>_<epoch-ms>".
type Notification struct {
	ID        string    `json:"id" firestore:"-"`
	UserID    string    `json:"userId" firestore:"userId"`
	Title     string    `json:"title" firestore:"title"`
	Body      string    `json:"body" firestore:"body"`
	Type      string    `json:"type" firestore:"type"`
	RelatedID *string   `json:"relatedId" firestore:"relatedId"`
	Read      bool      `json:"read" firestore:"read"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
