package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petcare-backend-go/internal/models"
)

func TestRealtimeRoutes_PetLocation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/update-pet-location", map[string]interface{}{
		"petId": "pet1", "latitude": 33.6844, "longitude": 73.0479,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/pet-location?petId=pet1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loc models.PetLocation
	decode(t, w, &loc)
	assert.Equal(t, "pet1", loc.PetID)
	assert.Equal(t, 33.6844, loc.Latitude)
	assert.NotZero(t, loc.Timestamp)

	w = s.do(t, http.MethodGet, "/api/pet-location", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/pet-location?petId=pet2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodPost, "/api/update-pet-location", map[string]interface{}{"petId": "pet1", "latitude": 120, "longitude": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRealtimeRoutes_Chat(t *testing.T) {
	s := newTestServer(t)

	for _, text := range []string{"Is Rex ready?", "Yes, come by at 5"} {
		w := s.do(t, http.MethodPost, "/api/chats/chat1/messages", map[string]string{"senderId": "owner1", "text": text})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/api/chats/chat1/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var messages []models.ChatMessage
	decode(t, w, &messages)
	require.Len(t, messages, 2)
	assert.Equal(t, "Is Rex ready?", messages[0].Text)
	assert.NotEmpty(t, messages[0].ID)

	w = s.do(t, http.MethodPost, "/api/chats/chat1/messages", map[string]string{"senderId": "owner1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantRoute(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodPost, "/api/generate-ai-response", map[string]string{"message": "hello"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("replies and keeps the session", func(t *testing.T) {
		s := newTestServer(t, withAssistant("Grooming costs $25."))
		w := s.do(t, http.MethodPost, "/api/generate-ai-response", map[string]string{"message": "How much is grooming?", "sessionId": "sess-1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp AssistantResponse
		decode(t, w, &resp)
		assert.Equal(t, "Grooming costs $25.", resp.Response)
		assert.Equal(t, "sess-1", resp.SessionID)

		w = s.do(t, http.MethodPost, "/api/generate-ai-response", map[string]string{"message": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
