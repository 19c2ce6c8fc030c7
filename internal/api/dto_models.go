package api

import (
	"time"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// The frontend reads pets, services, bookings and providers with snake_case field names.

type PetResponse struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	Species        string    `json:"species"`
	Breed          string    `json:"breed"`
	Age            float64   `json:"age"`
	Gender         string    `json:"gender"`
	Weight         float64   `json:"weight"`
	MedicalHistory string    `json:"medical_history"`
	ImageURL       string    `json:"image_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toPetResponse(p *models.Pet) PetResponse {
	return PetResponse{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		Name:           p.Name,
		Species:        p.Species,
		Breed:          p.Breed,
		Age:            p.Age,
		Gender:         p.Gender,
		Weight:         p.Weight,
		MedicalHistory: p.MedicalHistory,
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type ServiceResponse struct {
	ID          string    `json:"id"`
	ProviderID  string    `json:"provider_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Duration    string    `json:"duration"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func toServiceResponse(s *models.Service) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		ProviderID:  s.ProviderID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Category:    s.Category,
		Duration:    s.Duration,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}

func toServiceResponses(services []*models.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceResponse(s))
	}
	return out
}

type BookingResponse struct {
	ID              string    `json:"id"`
	PetOwnerID      string    `json:"pet_owner_id"`
	ProviderID      string    `json:"provider_id"`
	ServiceID       string    `json:"service_id"`
	ServiceName     string    `json:"service_name,omitempty"`
	PetID           string    `json:"pet_id"`
	PetIDs          []string  `json:"pet_ids"`
	PetNames        []string  `json:"pet_names"`
	BookingDate     string    `json:"booking_date"`
	ScheduledDate   string    `json:"scheduled_date"`
	Status          string    `json:"status"`
	PaymentStatus   string    `json:"payment_status"`
	StripeSessionID *string   `json:"stripe_session_id"`
	TotalPrice      float64   `json:"total_price"`
	BasePrice       float64   `json:"base_price"`
	NumberOfPets    int       `json:"number_of_pets"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Deduplicated    *bool     `json:"deduplicated,omitempty"`
}

func toBookingResponse(v *core.BookingView) BookingResponse {
	b := v.Booking
	petIDs := b.PetIDs
	if petIDs == nil {
		petIDs = []string{}
	}
	petNames := b.PetNames
	if petNames == nil {
		petNames = []string{}
	}
	return BookingResponse{
		ID:              b.ID,
		PetOwnerID:      b.UserID,
		ProviderID:      b.ProviderID,
		ServiceID:       b.ServiceID,
		ServiceName:     v.ServiceName,
		PetID:           b.PetID,
		PetIDs:          petIDs,
		PetNames:        petNames,
		BookingDate:     b.BookingDate,
		ScheduledDate:   b.ScheduledDate,
		Status:          string(b.Status),
		PaymentStatus:   b.PaymentStatus,
		StripeSessionID: b.StripeSessionID,
		TotalPrice:      b.TotalPrice,
		BasePrice:       b.BasePrice,
		NumberOfPets:    b.NumberOfPets,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func toBookingResponses(views []*core.BookingView) []BookingResponse {
	out := make([]BookingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toBookingResponse(v))
	}
	return out
}

type ProviderResponse struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	Email         string                     `json:"email"`
	Phone         string                     `json:"phone"`
	Address       string                     `json:"address"`
	Location      *models.GeoPoint           `json:"location"`
	BusinessHours map[string]models.DayHours `json:"business_hours"`
	DistanceKm    *float64                   `json:"distance_km,omitempty"`
	Services      []ServiceResponse          `json:"services,omitempty"`
}

func toProviderResponse(u *models.User) ProviderResponse {
	return ProviderResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Address:       u.Address,
		Location:      u.Location,
		BusinessHours: u.BusinessHours,
	}
}

func toNearbyResponse(p *core.NearbyProvider) ProviderResponse {
	resp := toProviderResponse(p.Provider)
	distance := p.DistanceKm
	resp.DistanceKm = &distance
	resp.Services = toServiceResponses(p.Services)
	return resp
}

// CheckoutSessionResponse is returned by POST /create-checkout-session.
type CheckoutSessionResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// AssistantResponse is returned by POST /generate-ai-response.
type AssistantResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}
