package models

import "time"

// Outbox event states.
const (
	OutboxPending   = "pending"
	OutboxDelivered = "delivered"
	OutboxFailed    = "failed"
)

// OutboxKindNotification is the only side effect kind today.
const OutboxKindNotification = "notification"

// OutboxEvent is a side effect recorded next to a primary write and delivered later by the outbox worker.
type OutboxEvent struct {
	ID            string    `json:"id" firestore:"-"`
	Kind          string    `json:"kind" firestore:"kind"`
	TargetRef     string    `json:"targetRef" firestore:"targetRef"` // raw user identifier, resolved at delivery
	Title         string    `json:"title" firestore:"title"`
	Body          string    `json:"body" firestore:"body"`
	Type          string    `json:"type" firestore:"type"`
	RelatedID     string    `json:"relatedId,omitempty" firestore:"relatedId,omitempty"`
	Status        string    `json:"status" firestore:"status"`
	Attempts      int       `json:"attempts" firestore:"attempts"`
	NextAttemptAt time.Time `json:"nextAttemptAt" firestore:"nextAttemptAt"`
	LastError     string    `json:"lastError,omitempty" firestore:"lastError,omitempty"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
}
