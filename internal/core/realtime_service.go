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

// EventPetLocationUpdate is broadcast to realtime clients after every GPS fix.
const EventPetLocationUpdate = "petLocationUpdate"

// LocationService stores pet GPS fixes and broadcasts them.
type LocationService struct {
	realtime    db.RealtimeStore
	broadcaster Broadcaster
	logger      *zap.Logger
	now         func() time.Time
}

// NewLocationService creates a new LocationService.
func NewLocationService(realtime db.RealtimeStore, broadcaster Broadcaster, logger *zap.Logger) *LocationService {
	return &LocationService{realtime: realtime, broadcaster: broadcaster, logger: logger, now: time.Now}
}

func petLocationPath(petID string) string { return "pets/" + petID + "/location" }
func gpsTrackingPath(petID string) string { return "gps_tracking/" + petID }

// UpdateLocation writes the fix to both realtime paths. Broadcast failures are logged only.
func (s *LocationService) UpdateLocation(ctx context.Context, req models.PetLocationRequest) (*models.PetLocation, error) {
	if req.PetID == "" || req.Latitude == nil || req.Longitude == nil {
		return nil, fmt.Errorf("%w: petId, latitude and longitude are required", ErrValidation)
	}
	if strings.ContainsAny(req.PetID, "/.#$[]") {
		return nil, fmt.Errorf("%w: petId contains invalid characters", ErrValidation)
	}
	if !validCoordinates(*req.Latitude, *req.Longitude) {
		return nil, fmt.Errorf("%w: latitude/longitude out of range", ErrValidation)
	}

	loc := &models.PetLocation{
		PetID:     req.PetID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Timestamp: s.now().UnixMilli(),
	}
	if err := s.realtime.Set(ctx, petLocationPath(req.PetID), loc); err != nil {
		return nil, err
	}
	if err := s.realtime.Set(ctx, gpsTrackingPath(req.PetID), loc); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(EventPetLocationUpdate, loc); err != nil {
			s.logger.Warn("Failed to broadcast pet location", zap.String("petID", req.PetID), zap.Error(err))
		}
	}
	return loc, nil
}

// GetLocation returns the last known location of a pet.
func (s *LocationService) GetLocation(ctx context.Context, petID string) (*models.PetLocation, error) {
	if petID == "" {
		return nil, fmt.Errorf("%w: petId is required", ErrValidation)
	}
	var loc models.PetLocation
	if err := s.realtime.Get(ctx, petLocationPath(petID), &loc); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, petID)
		}
		return nil, err
	}
	return &loc, nil
}

// ChatService stores chat threads in the realtime store.
type ChatService struct {
	realtime db.RealtimeStore
	now      func() time.Time
}

// NewChatService creates a new ChatService.
func NewChatService(realtime db.RealtimeStore) *ChatService {
	return &ChatService{realtime: realtime, now: time.Now}
}

func chatMessagesPath(chatID string) string { return "chats/" + chatID + "/messages" }

// SendMessage appends a message to a chat.
func (s *ChatService) SendMessage(ctx context.Context, chatID string, req models.ChatMessageRequest) (*models.ChatMessage, error) {
	if chatID == "" || strings.ContainsAny(chatID, "/.#$[]") {
		return nil, fmt.Errorf("%w: invalid chat id", ErrValidation)
	}
	if req.SenderID == "" || strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: senderId and text are required", ErrValidation)
	}
	msg := &models.ChatMessage{SenderID: req.SenderID, Text: req.Text, Timestamp: s.now().UnixMilli()}
	key, err := s.realtime.Push(ctx, chatMessagesPath(chatID), msg)
	if err != nil {
		return nil, err
	}
	msg.ID = key
	return msg, nil
}

// ListMessages returns the chat in timestamp order.
func (s *ChatService) ListMessages(ctx context.Context, chatID string) ([]*models.ChatMessage, error) {
	snaps, err := s.realtime.Children(ctx, chatMessagesPath(chatID), "timestamp")
	if err != nil {
		return nil, err
	}
	messages := make([]*models.ChatMessage, 0, len(snaps))
	for _, snap := range snaps {
		var m models.ChatMessage
		if err := snap.DataTo(&m); err != nil {
			continue
		}
		m.ID = snap.ID()
		messages = append(messages, &m)
	}
	return messages, nil
}
