package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

// StorePetRepository implements PetRepository on a Store.
type StorePetRepository struct {
	store  Store
	logger *zap.Logger
}

// NewPetRepository creates a PetRepository backed by store.
func NewPetRepository(store Store, logger *zap.Logger) *StorePetRepository {
	return &StorePetRepository{store: store, logger: logger}
}

// Create stores a pet and returns its generated ID.
func (r *StorePetRepository) Create(ctx context.Context, pet *models.Pet) (string, error) {
	id, err := r.store.Create(ctx, PetsCollection, pet.ID, pet)
	if err != nil {
		return "", fmt.Errorf("failed to create pet: %w", err)
	}
	pet.ID = id
	return id, nil
}

// GetByID retrieves a pet by ID. Returns ErrNotFound if it does not exist.
func (r *StorePetRepository) GetByID(ctx context.Context, petID string) (*models.Pet, error) {
	var pet models.Pet
	if err := r.store.Get(ctx, PetsCollection, petID, &pet); err != nil {
		return nil, fmt.Errorf("pet with ID '%s': %w", petID, err)
	}
	pet.ID = petID
	return &pet, nil
}

// List returns all pets, or the pets of ownerID when it is non-empty.
func (r *StorePetRepository) List(ctx context.Context, ownerID string) ([]*models.Pet, error) {
	var filters []Filter
	if ownerID != "" {
		filters = append(filters, Where("ownerId", ownerID))
	}
	snaps, err := r.store.Find(ctx, PetsCollection, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets for owner '%s': %w", ownerID, err)
	}
	return decodeAll(snaps, func(p *models.Pet, id string) { p.ID = id }, func(id string, err error) {
		r.logger.Error("Error decoding pet document, skipping", zap.String("petID", id), zap.Error(err))
	}), nil
}

// Update merges fields into a pet document.
func (r *StorePetRepository) Update(ctx context.Context, petID string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, PetsCollection, petID, fields); err != nil {
		return fmt.Errorf("failed to update pet with ID '%s': %w", petID, err)
	}
	return nil
}

// Delete removes a pet.
func (r *StorePetRepository) Delete(ctx context.Context, petID string) error {
	if err := r.store.Delete(ctx, PetsCollection, petID); err != nil {
		return fmt.Errorf("failed to delete pet with ID '%s': %w", petID, err)
	}
	return nil
}
