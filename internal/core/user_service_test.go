package core

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petcare-backend-go/internal/models"
)

type fakeVerifier struct {
	tokens map[string]*auth.Token
}

func (f *fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("ID token has invalid signature")
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	users := NewUserService(env.users, nil, env.logger)

	first, err := users.Register(ctx, models.CreateUserRequest{Name: "Ann", Email: "Ann@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "user_1", first.ID)
	require.NotNil(t, first.OriginalID)
	assert.Equal(t, int64(1), *first.OriginalID)
	assert.Equal(t, "ann@example.com", first.Email)
	assert.Equal(t, models.RoleUser, first.Role)
	assert.Equal(t, models.AccountTypePetOwner, first.AccountType)

	provider, err := users.Register(ctx, models.CreateUserRequest{
		UID: "firebaseUid0123456789abcdef", Name: "Vet", Email: "vet@example.com", AccountType: models.AccountTypeServiceProvider,
	})
	require.NoError(t, err)
	assert.Equal(t, "firebaseUid0123456789abcdef", provider.ID)
	assert.Nil(t, provider.OriginalID)
	assert.Equal(t, models.RoleProvider, provider.Role)

	_, err = users.Register(ctx, models.CreateUserRequest{Name: "Ann again", Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = users.Register(ctx, models.CreateUserRequest{UID: "firebaseUid0123456789abcdef", Name: "Dup", Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = users.Register(ctx, models.CreateUserRequest{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := users.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.ID)

	require.NoError(t, users.UpdateFCMToken(ctx, "user_1", "device-1"))
	got, err = users.GetUser(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "device-1", got.FCMToken)
}

func TestUserService_LoginWithoutVerifier(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, &models.User{ID: "user_1", Name: "Ann", Email: "ann@example.com"})
	users := NewUserService(env.users, nil, env.logger)

	user, err := users.Login(ctx, models.LoginRequest{Email: " ANN@example.com "})
	require.NoError(t, err)
	assert.Equal(t, "user_1", user.ID)

	_, err = users.Login(ctx, models.LoginRequest{Email: "nobody@example.com"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = users.Login(ctx, models.LoginRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_LoginWithIDToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, &models.User{ID: "firebaseUid0123456789abcdef", Name: "Vet", Email: "vet@example.com"})
	env.createUser(t, &models.User{ID: "user_5", Name: "Legacy", Email: "legacy@example.com"})

	verifier := &fakeVerifier{tokens: map[string]*auth.Token{
		"good":   {UID: "firebaseUid0123456789abcdef"},
		"legacy": {UID: "otherUid0123456789abcdefgh", Claims: map[string]interface{}{"email": "legacy@example.com"}},
	}}
	users := NewUserService(env.users, verifier, env.logger)

	user, err := users.Login(ctx, models.LoginRequest{IDToken: "good"})
	require.NoError(t, err)
	assert.Equal(t, "firebaseUid0123456789abcdef", user.ID)

	user, err = users.Login(ctx, models.LoginRequest{IDToken: "legacy"})
	require.NoError(t, err)
	assert.Equal(t, "user_5", user.ID)

	_, err = users.Login(ctx, models.LoginRequest{IDToken: "forged"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = users.Login(ctx, models.LoginRequest{Email: "vet@example.com"})
	assert.ErrorIs(t, err, ErrValidation, "a token is required once a verifier is configured")
}
