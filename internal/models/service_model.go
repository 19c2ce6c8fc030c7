package models

import "time"

// Service is an offering (grooming, veterinary, boarding, ...) published by a provider.
type Service struct {
	ID          string    `json:"id" firestore:"-"`
	ProviderID  string    `json:"providerId" firestore:"providerId"`
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	Price       float64   `json:"price" firestore:"price"`
	Category    string    `json:"category,omitempty" firestore:"category,omitempty"`
	Duration    string    `json:"duration,omitempty" firestore:"duration,omitempty"`
	IsActive    bool      `json:"isActive" firestore:"isActive"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
