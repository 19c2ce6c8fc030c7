package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

const usersCounterID = "users"

// counter is a monotonically increasing sequence stored in the counters collection.
type counter struct {
	Value int64 `json:"value" firestore:"value"`
}

// StoreUserRepository implements UserRepository on a Store.
type StoreUserRepository struct {
	store  Store
	logger *zap.Logger
}

// NewUserRepository creates a user repository backed by store.
func NewUserRepository(store Store, logger *zap.Logger) *StoreUserRepository {
	return &StoreUserRepository{store: store, logger: logger}
}

// Create adds a new user document. The user.ID (Firebase Auth UID or legacy ID) is the document ID.
func (r *StoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	if _, err := r.store.Create(ctx, UsersCollection, user.ID, user); err != nil {
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user by document ID.
func (r *StoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.store.Get(ctx, UsersCollection, userID, &user); err != nil {
		return nil, fmt.Errorf("user with ID '%s': %w", userID, err)
	}
	user.ID = userID
	return &user, nil
}

// Update merges fields into a user document.
func (r *StoreUserRepository) Update(ctx context.Context, userID string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, UsersCollection, userID, fields); err != nil {
		return fmt.Errorf("failed to update user with ID '%s': %w", userID, err)
	}
	return nil
}

// FindByEmail returns the user registered with email. Returns ErrNotFound if none matches.
func (r *StoreUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, Where("email", email))
}

// FindByOriginalID looks a user up by the legacy originalId field.
func (r *StoreUserRepository) FindByOriginalID(ctx context.Context, originalID interface{}) (*models.User, error) {
	return r.findOne(ctx, Where("originalId", originalID))
}

func (r *StoreUserRepository) findOne(ctx context.Context, filter Filter) (*models.User, error) {
	snaps, err := r.store.Find(ctx, UsersCollection, filter)
	if err != nil {
		return nil, err
	}
	users := decodeAll(snaps, setUserID, r.skip)
	if len(users) == 0 {
		return nil, fmt.Errorf("user with %s=%v: %w", filter.Field, filter.Value, ErrNotFound)
	}
	return users[0], nil
}

// ListProviders returns users flagged as providers by either role or account type.
func (r *StoreUserRepository) ListProviders(ctx context.Context) ([]*models.User, error) {
	byRole, err := r.store.Find(ctx, UsersCollection, Where("role", models.RoleProvider))
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	byAccount, err := r.store.Find(ctx, UsersCollection, Where("accountType", models.AccountTypeServiceProvider))
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}

	seen := make(map[string]bool)
	var providers []*models.User
	for _, u := range decodeAll(append(byRole, byAccount...), setUserID, r.skip) {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		providers = append(providers, u)
	}
	return providers, nil
}

// NextLegacyID allocates the next numeric legacy user ID from a transactional counter.
func (r *StoreUserRepository) NextLegacyID(ctx context.Context) (int64, error) {
	var next int64
	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		var c counter
		if err := tx.Get(CountersCollection, usersCounterID, &c); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		c.Value++
		next = c.Value
		return tx.Set(CountersCollection, usersCounterID, c)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate legacy user ID: %w", err)
	}
	return next, nil
}

func (r *StoreUserRepository) skip(id string, err error) {
	r.logger.Error("Error decoding user document, skipping", zap.String("userID", id), zap.Error(err))
}

func setUserID(u *models.User, id string) { u.ID = id }
