package core

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/sashabaranov/go-openai"
	"github.com/stripe/stripe-go/v74"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
)

// TokenVerifier verifies Firebase ID tokens. Satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// PushSender delivers FCM push messages. Satisfied by *messaging.Client.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// EventPublisher publishes a message body to a named queue.
type EventPublisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

// CheckoutSessionClient is the part of the Stripe API used for Checkout.
// Satisfied by the CheckoutSessions field of stripe-go's client.API.
type CheckoutSessionClient interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// ChatCompleter produces chat completions. Satisfied by *openai.Client.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Broadcaster fans an event out to every connected realtime client.
type Broadcaster interface {
	Broadcast(event string, payload interface{}) error
}

// SessionStore keeps assistant conversation history per session.
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]models.ChatTurn, error)
	Append(ctx context.Context, sessionID string, turns ...models.ChatTurn) error
}

// SideEffects records outbox events. EnqueueTx joins the caller's transaction;
// Kick asks the worker to drain without waiting for the next tick.
type SideEffects interface {
	Enqueue(ctx context.Context, event *models.OutboxEvent) error
	EnqueueTx(tx db.Tx, event *models.OutboxEvent) error
	Kick()
}
