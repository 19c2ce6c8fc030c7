package models

import "time"

// Pet belongs to exactly one owner (a User document).
type Pet struct {
	ID             string    `json:"id" firestore:"-"`
	OwnerID        string    `json:"ownerId" firestore:"ownerId"`
	Name           string    `json:"name" firestore:"name"`
	Species        string    `json:"species" firestore:"species"`
	Breed          string    `json:"breed,omitempty" firestore:"breed,omitempty"`
	Age            float64   `json:"age,omitempty" firestore:"age,omitempty"`
	Gender         string    `json:"gender,omitempty" firestore:"gender,omitempty"`
	Weight         float64   `json:"weight,omitempty" firestore:"weight,omitempty"`
	MedicalHistory string    `json:"medicalHistory,omitempty" firestore:"medicalHistory,omitempty"`
	ImageURL       string    `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
