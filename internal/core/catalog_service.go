package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
)

// CatalogService manages the services providers offer.
type CatalogService struct {
	services db.ServiceRepository
	users    db.UserRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(services db.ServiceRepository, users db.UserRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{services: services, users: users, logger: logger, now: time.Now}
}

// CreateService validates and stores a new service offering.
func (s *CatalogService) CreateService(ctx context.Context, req models.CreateServiceRequest) (*models.Service, error) {
	if req.ProviderID == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: provider_id and name are required", ErrValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	now := s.now().UTC()
	svc := &models.Service{
		ProviderID:  req.ProviderID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Duration:    req.Duration,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// GetService retrieves a service by ID.
func (s *CatalogService) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
		}
		return nil, err
	}
	return svc, nil
}

// ListServices filters by provider ID, or by a case-insensitive match on the provider name.
func (s *CatalogService) ListServices(ctx context.Context, providerID, providerName string) ([]*models.Service, error) {
	if providerID != "" || providerName == "" {
		return s.services.List(ctx, providerID)
	}

	providers, err := s.users.ListProviders(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(providerName))
	var result []*models.Service
	for _, p := range providers {
		if !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		services, err := s.services.List(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, services...)
	}
	return result, nil
}

// ActiveServices is the catalogue shown to the assistant.
func (s *CatalogService) ActiveServices(ctx context.Context) ([]*models.Service, error) {
	return s.services.ListActive(ctx)
}

// DeleteService removes the service. Existing bookings keep their serviceId.
func (s *CatalogService) DeleteService(ctx context.Context, serviceID string) error {
	return s.services.Delete(ctx, serviceID)
}
