package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"petcare-backend-go/internal/core"
	"petcare-backend-go/internal/models"
)

// Fixture is the YAML document loaded by the seed command. Pets and services refer to
// their owner or provider by the user's key.
type Fixture struct {
	Users    []UserFixture    `yaml:"users"`
	Pets     []PetFixture     `yaml:"pets"`
	Services []ServiceFixture `yaml:"services"`
}

type UserFixture struct {
	Key         string           `yaml:"key"`
	UID         string           `yaml:"uid"`
	Name        string           `yaml:"name"`
	Email       string           `yaml:"email"`
	Role        string           `yaml:"role"`
	AccountType string           `yaml:"accountType"`
	Phone       string           `yaml:"phone"`
	Address     string           `yaml:"address"`
	Location    *models.GeoPoint `yaml:"location"`
}

type PetFixture struct {
	Owner   string  `yaml:"owner"`
	Name    string  `yaml:"name"`
	Species string  `yaml:"species"`
	Breed   string  `yaml:"breed"`
	Age     float64 `yaml:"age"`
	Gender  string  `yaml:"gender"`
	Weight  float64 `yaml:"weight"`
}

type ServiceFixture struct {
	Provider    string  `yaml:"provider"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	Duration    string  `yaml:"duration"`
	Inactive    bool    `yaml:"inactive"`
}

// SeedResult counts the documents written.
type SeedResult struct {
	Users, SkippedUsers, Pets, Services int
}

func loadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	seen := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if u.Key == "" {
			return nil, fmt.Errorf("user #%d has no key", i+1)
		}
		if seen[u.Key] {
			return nil, fmt.Errorf("duplicate user key %q", u.Key)
		}
		seen[u.Key] = true
	}
	for _, p := range f.Pets {
		if !seen[p.Owner] {
			return nil, fmt.Errorf("pet %q refers to unknown owner %q", p.Name, p.Owner)
		}
	}
	for _, s := range f.Services {
		if !seen[s.Provider] {
			return nil, fmt.Errorf("service %q refers to unknown provider %q", s.Name, s.Provider)
		}
	}
	return &f, nil
}

// seeder writes a fixture through the core services so that seeded data follows the
// same rules as data created through the API.
type seeder struct {
	users   *core.UserService
	pets    *core.PetService
	catalog *core.CatalogService
	logger  *zap.Logger
}

// apply registers the users and then creates pets and services for newly registered
// users only. Users whose email already exists are skipped, so re-running a fixture does
// not duplicate pets or services.
func (s *seeder) apply(ctx context.Context, f *Fixture) (SeedResult, error) {
	var result SeedResult
	created := make(map[string]string, len(f.Users))

	for _, u := range f.Users {
		user, err := s.users.Register(ctx, models.CreateUserRequest{
			UID:         u.UID,
			Name:        u.Name,
			Email:       u.Email,
			Role:        u.Role,
			AccountType: u.AccountType,
			Phone:       u.Phone,
			Address:     u.Address,
			Location:    u.Location,
		})
		if errors.Is(err, core.ErrEmailTaken) || errors.Is(err, core.ErrUserExists) {
			s.logger.Info("User already seeded, skipping", zap.String("key", u.Key), zap.String("email", u.Email))
			result.SkippedUsers++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("seed user %q: %w", u.Key, err)
		}
		created[u.Key] = user.ID
		result.Users++
	}

	for _, p := range f.Pets {
		ownerID, ok := created[p.Owner]
		if !ok {
			continue
		}
		name, species, breed, gender := p.Name, p.Species, p.Breed, p.Gender
		age, weight := p.Age, p.Weight
		if _, err := s.pets.CreatePet(ctx, models.PetRequest{
			OwnerID: ownerID, Name: &name, Species: &species, Breed: &breed,
			Age: &age, Gender: &gender, Weight: &weight,
		}); err != nil {
			return result, fmt.Errorf("seed pet %q: %w", p.Name, err)
		}
		result.Pets++
	}

	for _, svc := range f.Services {
		providerID, ok := created[svc.Provider]
		if !ok {
			continue
		}
		active := !svc.Inactive
		if _, err := s.catalog.CreateService(ctx, models.CreateServiceRequest{
			ProviderID: providerID, Name: svc.Name, Description: svc.Description, Price: svc.Price,
			Category: svc.Category, Duration: svc.Duration, IsActive: &active,
		}); err != nil {
			return result, fmt.Errorf("seed service %q: %w", svc.Name, err)
		}
		result.Services++
	}
	return result, nil
}
