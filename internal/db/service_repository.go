package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

// StoreServiceRepository implements ServiceRepository on a Store.
type StoreServiceRepository struct {
	store  Store
	logger *zap.Logger
}

// NewServiceRepository creates a ServiceRepository backed by store.
func NewServiceRepository(store Store, logger *zap.Logger) *StoreServiceRepository {
	return &StoreServiceRepository{store: store, logger: logger}
}

// Create stores a service and returns its generated ID.
func (r *StoreServiceRepository) Create(ctx context.Context, service *models.Service) (string, error) {
	id, err := r.store.Create(ctx, ServicesCollection, service.ID, service)
	if err != nil {
		return "", fmt.Errorf("failed to create service: %w", err)
	}
	service.ID = id
	return id, nil
}

// GetByID retrieves a service by ID. Returns ErrNotFound if it does not exist.
func (r *StoreServiceRepository) GetByID(ctx context.Context, serviceID string) (*models.Service, error) {
	var service models.Service
	if err := r.store.Get(ctx, ServicesCollection, serviceID, &service); err != nil {
		return nil, fmt.Errorf("service with ID '%s': %w", serviceID, err)
	}
	service.ID = serviceID
	return &service, nil
}

// List returns the services offered by providerID, or every service when it is empty.
func (r *StoreServiceRepository) List(ctx context.Context, providerID string) ([]*models.Service, error) {
	var filters []Filter
	if providerID != "" {
		filters = append(filters, Where("providerId", providerID))
	}
	return r.find(ctx, filters...)
}

// ListActive returns services with isActive set.
func (r *StoreServiceRepository) ListActive(ctx context.Context) ([]*models.Service, error) {
	return r.find(ctx, Where("isActive", true))
}

// Delete removes a service.
func (r *StoreServiceRepository) Delete(ctx context.Context, serviceID string) error {
	if err := r.store.Delete(ctx, ServicesCollection, serviceID); err != nil {
		return fmt.Errorf("failed to delete service with ID '%s': %w", serviceID, err)
	}
	return nil
}

func (r *StoreServiceRepository) find(ctx context.Context, filters ...Filter) ([]*models.Service, error) {
	snaps, err := r.store.Find(ctx, ServicesCollection, filters...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return decodeAll(snaps, func(s *models.Service, id string) { s.ID = id }, func(id string, err error) {
		r.logger.Error("Error decoding service document, skipping", zap.String("serviceID", id), zap.Error(err))
	}), nil
}
