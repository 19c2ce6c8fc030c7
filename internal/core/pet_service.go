package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
)

// PetService manages pets on behalf of their owners.
type PetService struct {
	pets db.PetRepository
	now  func() time.Time
}

// NewPetService creates a new PetService.
func NewPetService(pets db.PetRepository) *PetService {
	return &PetService{pets: pets, now: time.Now}
}

// CreatePet validates and stores a pet.
func (s *PetService) CreatePet(ctx context.Context, req models.PetRequest) (*models.Pet, error) {
	if req.OwnerID == "" || req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: owner_id and name are required", ErrValidation)
	}
	now := s.now().UTC()
	pet := &models.Pet{OwnerID: req.OwnerID, CreatedAt: now, UpdatedAt: now}
	applyPetFields(pet, req)

	if _, err := s.pets.Create(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

func applyPetFields(pet *models.Pet, req models.PetRequest) {
	if req.Name != nil {
		pet.Name = strings.TrimSpace(*req.Name)
	}
	if req.Species != nil {
		pet.Species = *req.Species
	}
	if req.Breed != nil {
		pet.Breed = *req.Breed
	}
	if req.Age != nil {
		pet.Age = *req.Age
	}
	if req.Gender != nil {
		pet.Gender = *req.Gender
	}
	if req.Weight != nil {
		pet.Weight = *req.Weight
	}
	if req.MedicalHistory != nil {
		pet.MedicalHistory = *req.MedicalHistory
	}
	if req.ImageURL != nil {
		pet.ImageURL = *req.ImageURL
	}
}

// GetPet retrieves a pet by ID.
func (s *PetService) GetPet(ctx context.Context, petID string) (*models.Pet, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPetNotFound, petID)
		}
		return nil, err
	}
	return pet, nil
}

// ListPets returns the owner's pets, or every pet when ownerID is empty.
func (s *PetService) ListPets(ctx context.Context, ownerID string) ([]*models.Pet, error) {
	return s.pets.List(ctx, ownerID)
}

// UpdatePet applies the fields present in req.
func (s *PetService) UpdatePet(ctx context.Context, petID string, req models.PetRequest) (*models.Pet, error) {
	pet, err := s.GetPet(ctx, petID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	applyPetFields(pet, req)

	fields := map[string]interface{}{
		"name":           pet.Name,
		"species":        pet.Species,
		"breed":          pet.Breed,
		"age":            pet.Age,
		"gender":         pet.Gender,
		"weight":         pet.Weight,
		"medicalHistory": pet.MedicalHistory,
		"imageUrl":       pet.ImageURL,
	}
	if err := s.pets.Update(ctx, petID, fields); err != nil {
		return nil, err
	}
	pet.UpdatedAt = s.now().UTC()
	return pet, nil
}

// DeletePet removes the pet. Bookings referencing it are kept.
func (s *PetService) DeletePet(ctx context.Context, petID string) error {
	return s.pets.Delete(ctx, petID)
}
