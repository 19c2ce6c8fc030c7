package models

import "time"

// User roles and account types. The two are kept in sync: a provider always has the
// serviceProvider account type and every other user is a pet owner.
const (
	RoleUser     = "user"
	RoleProvider = "provider"

	AccountTypePetOwner        = "petOwner"
	AccountTypeServiceProvider = "serviceProvider"
)

// GeoPoint is a latitude/longitude pair in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
}

// DayHours holds the opening hours for a single weekday, e.g. {"09:00", "17:00", true}.
type DayHours struct {
	Open   string `json:"open" firestore:"open"`
	Close  string `json:"close" firestore:"close"`
	IsOpen bool   `json:"isOpen" firestore:"isOpen"`
}

// User represents a pet owner or a service provider.
// The document ID is either a Firebase Auth UID or a legacy "user_<n>" identifier.
type User struct {
	ID            string              `json:"id" firestore:"-"`
	OriginalID    *int64              `json:"originalId,omitempty" firestore:"originalId,omitempty"` // legacy numeric ID
	Name          string              `json:"name" firestore:"name"`
	Email         string              `json:"email" firestore:"email"`
	Role          string              `json:"role" firestore:"role"`
	AccountType   string              `json:"accountType" firestore:"accountType"`
	Phone         string              `json:"phone,omitempty" firestore:"phone,omitempty"`
	Address       string              `json:"address,omitempty" firestore:"address,omitempty"`
	Location      *GeoPoint           `json:"location" firestore:"location"`
	BusinessHours map[string]DayHours `json:"businessHours" firestore:"businessHours"`
	FCMToken      string              `json:"fcmToken,omitempty" firestore:"fcmToken,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt     time.Time           `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsProvider reports whether the user offers services.
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider || u.AccountType == AccountTypeServiceProvider
}
