package core

import "errors"

// Validation and lookup errors. Handlers map them to HTTP status codes.
var (
	ErrValidation = errors.New("validation failed")

	ErrUserNotFound         = errors.New("user not found")
	ErrPetNotFound          = errors.New("pet not found")
	ErrServiceNotFound      = errors.New("service not found")
	ErrProviderNotFound     = errors.New("provider not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrLocationNotFound     = errors.New("pet location not found")

	ErrEmailTaken = errors.New("email already registered")
	ErrUserExists = errors.New("user already exists")

	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("booking status transition not allowed")

	ErrUnauthorized = errors.New("unauthorized")
)

// Upstream errors.
var (
	ErrStripeClient         = errors.New("stripe client operation failed")
	ErrWebhookSignature     = errors.New("stripe webhook signature verification failed")
	ErrWebhookProcessing    = errors.New("stripe webhook processing failed")
	ErrAssistantUnavailable = errors.New("assistant is not configured")
	ErrAssistantUpstream    = errors.New("assistant request failed")
)
