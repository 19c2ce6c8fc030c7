package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
)

// DefaultSearchRadiusKm is used when a nearby search does not give a radius.
const DefaultSearchRadiusKm = 10.0

// NearbyProvider is a provider within the search radius.
type NearbyProvider struct {
	Provider   *models.User
	DistanceKm float64
	Services   []*models.Service
}

// ProviderService manages provider profiles and the nearby search.
type ProviderService struct {
	users    db.UserRepository
	services db.ServiceRepository
	resolver *UserResolver
	logger   *zap.Logger
}

// NewProviderService creates a new ProviderService.
func NewProviderService(users db.UserRepository, services db.ServiceRepository, logger *zap.Logger) *ProviderService {
	return &ProviderService{users: users, services: services, resolver: NewUserResolver(users), logger: logger}
}

// GetProfile returns a provider's user document.
func (s *ProviderService) GetProfile(ctx context.Context, rawID string) (*models.User, error) {
	id, err := s.resolver.Resolve(ctx, ParseUserRef(rawID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, rawID)
		}
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, rawID)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies the fields present in req and returns the stored profile.
func (s *ProviderService) UpdateProfile(ctx context.Context, rawID string, req models.UpdateProviderProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, rawID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Location != nil {
		if !validCoordinates(req.Location.Latitude, req.Location.Longitude) {
			return nil, fmt.Errorf("%w: location is out of range", ErrValidation)
		}
		fields["location"] = req.Location
	}
	if req.BusinessHours != nil {
		fields["businessHours"] = *req.BusinessHours
	}
	if len(fields) == 0 {
		return user, nil
	}

	if err := s.users.Update(ctx, user.ID, fields); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, user.ID)
}

// Nearby returns providers with a location within radiusKm of (lat, lon) that offer at least
// one service, closest first.
func (s *ProviderService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]*NearbyProvider, error) {
	if !validCoordinates(lat, lon) {
		return nil, fmt.Errorf("%w: lat/lon out of range", ErrValidation)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ErrValidation)
	}

	var (
		providers []*models.User
		services  []*models.Service
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		providers, err = s.users.ListProviders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		services, err = s.services.List(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load providers: %w", err)
	}

	byProvider := make(map[string][]*models.Service)
	for _, svc := range services {
		byProvider[svc.ProviderID] = append(byProvider[svc.ProviderID], svc)
	}

	var nearby []*NearbyProvider
	for _, p := range providers {
		if p.Location == nil || len(byProvider[p.ID]) == 0 {
			continue
		}
		d := HaversineKm(lat, lon, p.Location.Latitude, p.Location.Longitude)
		if d > radiusKm {
			continue
		}
		nearby = append(nearby, &NearbyProvider{Provider: p, DistanceKm: d, Services: byProvider[p.ID]})
	}
	sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })

	s.logger.Debug("Nearby provider search", zap.Float64("lat", lat), zap.Float64("lon", lon),
		zap.Float64("radiusKm", radiusKm), zap.Int("results", len(nearby)))
	return nearby, nil
}
