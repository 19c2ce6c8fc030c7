package models

// CreateUserRequest is the registration payload. UID is the Firebase Auth UID when the
// client registered through Firebase; without it a legacy "user_<n>" ID is allocated.
type CreateUserRequest struct {
	UID         string    `json:"uid,omitempty"`
	Name        string    `json:"name" binding:"required"`
	Email       string    `json:"email" binding:"required,email"`
	Role        string    `json:"role,omitempty"`
	AccountType string    `json:"accountType,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Location    *GeoPoint `json:"location,omitempty"`
}

// LoginRequest carries either a Firebase ID token or, for local backends, an email.
type LoginRequest struct {
	IDToken string `json:"idToken,omitempty"`
	Email   string `json:"email,omitempty"`
}

// UpdateProviderProfileRequest uses pointers so that absent fields are left untouched.
type UpdateProviderProfileRequest struct {
	Name          *string              `json:"name,omitempty"`
	Phone         *string              `json:"phone,omitempty"`
	Address       *string              `json:"address,omitempty"`
	Location      *GeoPoint            `json:"location,omitempty"`
	BusinessHours *map[string]DayHours `json:"businessHours,omitempty"`
}

// PetRequest is used for both creating and updating a pet.
type PetRequest struct {
	OwnerID        string   `json:"owner_id"`
	Name           *string  `json:"name,omitempty"`
	Species        *string  `json:"species,omitempty"`
	Breed          *string  `json:"breed,omitempty"`
	Age            *float64 `json:"age,omitempty"`
	Gender         *string  `json:"gender,omitempty"`
	Weight         *float64 `json:"weight,omitempty"`
	MedicalHistory *string  `json:"medical_history,omitempty"`
	ImageURL       *string  `json:"image_url,omitempty"`
}

// CreateServiceRequest is the provider-side payload for publishing a service.
type CreateServiceRequest struct {
	ProviderID  string  `json:"provider_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" binding:"gte=0"`
	Category    string  `json:"category,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CreateBookingRequest keeps the legacy snake_case field names used by the frontend.
// Required fields are checked by the booking service so that every caller gets the same 400.
type CreateBookingRequest struct {
	PetOwnerID  string   `json:"pet_owner_id"`
	ServiceID   string   `json:"service_id"`
	PetID       string   `json:"pet_id"`
	PetIDs      []string `json:"pet_ids,omitempty"`
	PetNames    []string `json:"pet_names,omitempty"`
	BookingDate string   `json:"booking_date"`
	ProviderID  string   `json:"provider_id,omitempty"`
	BasePrice   *float64 `json:"base_price,omitempty"`
	TotalPrice  *float64 `json:"total_price,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// UpdateBookingStatusRequest is the body of PUT /bookings/:id.
type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

// CheckoutSessionRequest is the body of POST /create-checkout-session.
type CheckoutSessionRequest struct {
	ServiceName string  `json:"serviceName"`
	Price       float64 `json:"price"`
	ServiceID   string  `json:"serviceId,omitempty"`
	UserID      string  `json:"userId,omitempty"`
	BookingID   string  `json:"bookingId,omitempty"`
	Currency    string  `json:"currency,omitempty"`
}

// PetLocationRequest is the body of POST /update-pet-location.
type PetLocationRequest struct {
	PetID     string   `json:"petId"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ChatMessageRequest is the body of POST /chats/:chatId/messages.
type ChatMessageRequest struct {
	SenderID string `json:"senderId" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

// AssistantRequest is the body of POST /generate-ai-response.
type AssistantRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}
