package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petcare-backend-go/internal/models"
)

func strPtr(s string) *string { return &s }

func TestPetService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	pets := NewPetService(env.pets)

	_, err := pets.CreatePet(ctx, models.PetRequest{Name: strPtr("Rex")})
	assert.ErrorIs(t, err, ErrValidation)

	rex, err := pets.CreatePet(ctx, models.PetRequest{OwnerID: "user_1", Name: strPtr("Rex"), Species: strPtr("dog"), Age: floatPtr(3)})
	require.NoError(t, err)
	require.NotEmpty(t, rex.ID)

	updated, err := pets.UpdatePet(ctx, rex.ID, models.PetRequest{Breed: strPtr("Beagle")})
	require.NoError(t, err)
	assert.Equal(t, "Beagle", updated.Breed)
	assert.Equal(t, "dog", updated.Species, "absent fields are kept")

	_, err = pets.UpdatePet(ctx, rex.ID, models.PetRequest{Name: strPtr(" ")})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := pets.ListPets(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Beagle", list[0].Breed)

	require.NoError(t, pets.DeletePet(ctx, rex.ID))
	_, err = pets.GetPet(ctx, rex.ID)
	assert.ErrorIs(t, err, ErrPetNotFound)
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, &models.User{ID: "prov1", Name: "Happy Paws", Role: models.RoleProvider, AccountType: models.AccountTypeServiceProvider})
	env.createUser(t, &models.User{ID: "prov2", Name: "Vet Point", Role: models.RoleProvider, AccountType: models.AccountTypeServiceProvider})
	catalog := NewCatalogService(env.services, env.users, env.logger)

	inactive := false
	grooming, err := catalog.CreateService(ctx, models.CreateServiceRequest{ProviderID: "prov1", Name: "Grooming", Price: 25})
	require.NoError(t, err)
	assert.True(t, grooming.IsActive)
	_, err = catalog.CreateService(ctx, models.CreateServiceRequest{ProviderID: "prov2", Name: "Checkup", Price: 40, IsActive: &inactive})
	require.NoError(t, err)

	_, err = catalog.CreateService(ctx, models.CreateServiceRequest{ProviderID: "prov1", Name: "Bad", Price: -1})
	assert.ErrorIs(t, err, ErrValidation)

	all, err := catalog.ListServices(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := catalog.ListServices(ctx, "", "happy")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Grooming", byName[0].Name)

	active, err := catalog.ActiveServices(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, grooming.ID, active[0].ID)

	require.NoError(t, catalog.DeleteService(ctx, grooming.ID))
	_, err = catalog.GetService(ctx, grooming.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
