package api

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petcare-backend-go/internal/models"
)

func registerUser(t *testing.T, s *testServer, body map[string]interface{}) models.User {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/users", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user models.User
	decode(t, w, &user)
	return user
}

func TestUserRoutes_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	user := registerUser(t, s, map[string]interface{}{"name": "Ayesha", "email": "Ayesha@Example.com", "accountType": "serviceProvider"})
	assert.Equal(t, "user_1", user.ID)
	assert.Equal(t, models.RoleProvider, user.Role)
	assert.Equal(t, models.AccountTypeServiceProvider, user.AccountType)

	w := s.do(t, http.MethodPost, "/api/users", map[string]interface{}{"name": "Other", "email": "ayesha@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/users", map[string]interface{}{"name": "No email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/login", map[string]interface{}{"email": "ayesha@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Success bool        `json:"success"`
		User    models.User `json:"user"`
	}
	decode(t, w, &login)
	assert.True(t, login.Success)
	assert.Equal(t, "user_1", login.User.ID)

	w = s.do(t, http.MethodPost, "/api/login", map[string]interface{}{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Legacy numeric identifiers resolve through originalId.
	w = s.do(t, http.MethodGet, "/api/users/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &user)
	assert.Equal(t, "user_1", user.ID)

	w = s.do(t, http.MethodPut, "/api/users/user_1/fcm-token", map[string]string{"token": "fcm-abc"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/users/user_1", nil)
	decode(t, w, &user)
	assert.Equal(t, "fcm-abc", user.FCMToken)
}

func TestProviderRoutes_Profile(t *testing.T) {
	s := newTestServer(t)
	registerUser(t, s, map[string]interface{}{"name": "Clinic", "email": "clinic@example.com", "role": "provider"})

	w := s.do(t, http.MethodPut, "/api/providers/user_1/profile", map[string]interface{}{
		"phone":         "+92-300-0000000",
		"location":      map[string]float64{"latitude": 33.7, "longitude": 73.05},
		"businessHours": map[string]interface{}{"monday": map[string]interface{}{"open": "09:00", "close": "17:00", "isOpen": true}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/providers/user_1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile ProviderResponse
	decode(t, w, &profile)
	assert.Equal(t, "+92-300-0000000", profile.Phone)
	require.NotNil(t, profile.Location)
	assert.Equal(t, 33.7, profile.Location.Latitude)
	assert.Equal(t, models.DayHours{Open: "09:00", Close: "17:00", IsOpen: true}, profile.BusinessHours["monday"])

	w = s.do(t, http.MethodGet, "/api/providers/user_99/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProviderRoutes_Nearby(t *testing.T) {
	s := newTestServer(t)
	near := registerUser(t, s, map[string]interface{}{
		"name": "Near Groomers", "email": "near@example.com", "role": "provider",
		"location": map[string]float64{"latitude": 33.7000, "longitude": 73.0600},
	})
	closest := registerUser(t, s, map[string]interface{}{
		"name": "Closest Vets", "email": "closest@example.com", "role": "provider",
		"location": map[string]float64{"latitude": 33.6850, "longitude": 73.0480},
	})
	far := registerUser(t, s, map[string]interface{}{
		"name": "Lahore Boarding", "email": "far@example.com", "role": "provider",
		"location": map[string]float64{"latitude": 31.5204, "longitude": 74.3587},
	})
	registerUser(t, s, map[string]interface{}{
		"name": "No Services", "email": "idle@example.com", "role": "provider",
		"location": map[string]float64{"latitude": 33.6844, "longitude": 73.0479},
	})
	registerUser(t, s, map[string]interface{}{"name": "Nowhere", "email": "nowhere@example.com", "role": "provider"})

	createTestService(t, s, near.ID, "Grooming", 25)
	createTestService(t, s, closest.ID, "Checkup", 40)
	createTestService(t, s, far.ID, "Boarding", 15)

	w := s.do(t, http.MethodGet, "/api/providers?lat=33.6844&lon=73.0479&radius=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var results []ProviderResponse
	decode(t, w, &results)

	var ids []string
	for _, r := range results {
		ids = append(ids, r.ID)
		require.NotNil(t, r.DistanceKm)
		assert.LessOrEqual(t, *r.DistanceKm, 10.0)
		assert.NotEmpty(t, r.Services)
	}
	if diff := cmp.Diff([]string{closest.ID, near.ID}, ids); diff != "" {
		t.Errorf("nearby providers mismatch (-want +got):\n%s", diff)
	}

	w = s.do(t, http.MethodGet, "/api/providers?lat=abc&lon=73", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/providers?lat=33&lon=73&radius=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
