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

// UserService registers users and signs them in.
type UserService struct {
	users    db.UserRepository
	resolver *UserResolver
	verifier TokenVerifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService creates a UserService. verifier may be nil when Firebase Auth is not
// available, in which case login falls back to an email lookup.
func NewUserService(users db.UserRepository, verifier TokenVerifier, logger *zap.Logger) *UserService {
	return &UserService{
		users:    users,
		resolver: NewUserResolver(users),
		verifier: verifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a user. The Firebase UID is used as the document ID when given,
// otherwise a legacy "user_<n>" ID is allocated.
func (s *UserService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	role, accountType := normalizeRole(req.Role, req.AccountType)
	now := s.now().UTC()
	user := &models.User{
		ID:          req.UID,
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Role:        role,
		AccountType: accountType,
		Phone:       req.Phone,
		Address:     req.Address,
		Location:    req.Location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if user.ID == "" {
		n, err := s.users.NextLegacyID(ctx)
		if err != nil {
			return nil, err
		}
		user.ID = fmt.Sprintf("user_%d", n)
		user.OriginalID = &n
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, user.ID)
		}
		return nil, err
	}
	s.logger.Info("User registered", zap.String("userID", user.ID), zap.String("role", user.Role))
	return user, nil
}

// normalizeRole keeps role and account type consistent: either one marking the
// user as a provider makes both provider values.
func normalizeRole(role, accountType string) (string, string) {
	if role == models.RoleProvider || accountType == models.AccountTypeServiceProvider {
		return models.RoleProvider, models.AccountTypeServiceProvider
	}
	return models.RoleUser, models.AccountTypePetOwner
}

// Login resolves the profile of the caller. With a token verifier configured the Firebase ID
// token is required; without one the email is used.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if s.verifier == nil {
		if req.Email == "" {
			return nil, fmt.Errorf("%w: email is required", ErrValidation)
		}
		return s.byEmail(ctx, req.Email)
	}

	if req.IDToken == "" {
		return nil, fmt.Errorf("%w: idToken is required", ErrValidation)
	}
	token, err := s.verifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		s.logger.Warn("ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("%w: invalid ID token", ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, token.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	if email, ok := token.Claims["email"].(string); ok && email != "" {
		return s.byEmail(ctx, email)
	}
	return nil, fmt.Errorf("%w: %s", ErrUserNotFound, token.UID)
}

func (s *UserService) byEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		return nil, err
	}
	return user, nil
}

// GetUser accepts a Firebase UID or a legacy identifier.
func (s *UserService) GetUser(ctx context.Context, rawID string) (*models.User, error) {
	id, err := s.resolver.Resolve(ctx, ParseUserRef(rawID))
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, rawID)
		}
		return nil, err
	}
	return user, nil
}

// UpdateFCMToken stores the device token used for push notifications.
func (s *UserService) UpdateFCMToken(ctx context.Context, rawID, token string) error {
	user, err := s.GetUser(ctx, rawID)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, user.ID, map[string]interface{}{"fcmToken": token})
}
