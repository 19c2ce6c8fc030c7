package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"petcare-backend-go/internal/db"
)

// firebaseUIDMinLength is the length above which an identifier is taken to be a Firebase UID.
// Legacy identifiers ("42", "user_42") are always shorter.
const firebaseUIDMinLength = 20

// UserRefKind tells how a caller-supplied user identifier must be resolved.
type UserRefKind int

const (
	FirebaseUID UserRefKind = iota
	LegacyID
)

// UserRef is a user identifier classified once at the API boundary.
type UserRef struct {
	Kind UserRefKind
	Raw  string
	// Number is set for numeric legacy identifiers.
	Number *int64
}

// ParseUserRef classifies raw as a Firebase UID or a legacy identifier.
func ParseUserRef(raw string) UserRef {
	raw = strings.TrimSpace(raw)
	if len(raw) > firebaseUIDMinLength {
		return UserRef{Kind: FirebaseUID, Raw: raw}
	}
	ref := UserRef{Kind: LegacyID, Raw: raw}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		ref.Number = &n
	}
	return ref
}

func (r UserRef) String() string { return r.Raw }

// UserResolver maps a UserRef to the users document ID.
type UserResolver struct {
	users db.UserRepository
}

// NewUserResolver creates a UserResolver over users.
func NewUserResolver(users db.UserRepository) *UserResolver {
	return &UserResolver{users: users}
}

// Resolve returns the document ID for ref or ErrUserNotFound. A Firebase UID is returned
// as is; a legacy ID is looked up as a document ID, then as a numeric originalId, then
// as a string originalId.
func (r *UserResolver) Resolve(ctx context.Context, ref UserRef) (string, error) {
	if ref.Raw == "" {
		return "", fmt.Errorf("%w: empty user identifier", ErrUserNotFound)
	}
	if ref.Kind == FirebaseUID {
		return ref.Raw, nil
	}

	if _, err := r.users.GetByID(ctx, ref.Raw); err == nil {
		return ref.Raw, nil
	} else if !errors.Is(err, db.ErrNotFound) {
		return "", err
	}

	if ref.Number != nil {
		user, err := r.users.FindByOriginalID(ctx, *ref.Number)
		if err == nil {
			return user.ID, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return "", err
		}
	}

	user, err := r.users.FindByOriginalID(ctx, ref.Raw)
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return "", err
	}
	return "", fmt.Errorf("%w: %q", ErrUserNotFound, ref.Raw)
}
