package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
)

// maxIDCollisions bounds the retries when two notifications for a user land on the same millisecond.
const maxIDCollisions = 5

// NotificationInput is a notification before its target has been resolved.
type NotificationInput struct {
	Target    string // raw user identifier
	Title     string
	Body      string
	Type      string
	RelatedID string
}

// NotificationService writes in-app notifications and fans them out to push and the message queue.
type NotificationService struct {
	resolver      *UserResolver
	users         db.UserRepository
	notifications db.NotificationRepository
	push          PushSender
	publisher     EventPublisher
	queueName     string
	logger        *zap.Logger
	now           func() time.Time
}

// NotificationChannels are the optional delivery channels besides the notifications collection.
type NotificationChannels struct {
	Push      PushSender
	Publisher EventPublisher
	QueueName string
}

// NewNotificationService creates a NotificationService. Nil channels are skipped.
func NewNotificationService(users db.UserRepository, notifications db.NotificationRepository, channels NotificationChannels, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		resolver:      NewUserResolver(users),
		users:         users,
		notifications: notifications,
		push:          channels.Push,
		publisher:     channels.Publisher,
		queueName:     channels.QueueName,
		logger:        logger,
		now:           time.Now,
	}
}

// ResolveTarget resolves a raw identifier for writing a notification. When no user matches,
// the raw identifier is returned unchanged and a warning is logged.
func (s *NotificationService) ResolveTarget(ctx context.Context, raw string) (string, error) {
	id, err := s.resolver.Resolve(ctx, ParseUserRef(raw))
	if err == nil {
		return id, nil
	}
	if errors.Is(err, ErrUserNotFound) {
		s.logger.Warn("No user matches notification target, using identifier as is", zap.String("target", raw))
		return raw, nil
	}
	return "", fmt.Errorf("failed to resolve notification target %q: %w", raw, err)
}

// Send stores the notification under "<uid>_<epoch-ms>", then pushes and publishes it.
// Push and publish failures are logged only.
func (s *NotificationService) Send(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	userID, err := s.ResolveTarget(ctx, in.Target)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	n := &models.Notification{
		UserID:    userID,
		Title:     in.Title,
		Body:      in.Body,
		Type:      in.Type,
		Read:      false,
		CreatedAt: now,
	}
	if in.RelatedID != "" {
		related := in.RelatedID
		n.RelatedID = &related
	}

	for i := 0; ; i++ {
		n.ID = fmt.Sprintf("%s_%d", userID, now.UnixMilli()+int64(i))
		err = s.notifications.Create(ctx, n)
		if err == nil || !errors.Is(err, db.ErrAlreadyExists) || i == maxIDCollisions {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store notification for %s: %w", userID, err)
	}

	s.sendPush(ctx, n)
	s.publish(ctx, n)
	return n, nil
}

func (s *NotificationService) sendPush(ctx context.Context, n *models.Notification) {
	if s.push == nil {
		return
	}
	user, err := s.users.GetByID(ctx, n.UserID)
	if err != nil || user.FCMToken == "" {
		return
	}
	msg := &messaging.Message{
		Token:        user.FCMToken,
		Notification: &messaging.Notification{Title: n.Title, Body: n.Body},
		Data:         map[string]string{"type": n.Type, "notificationId": n.ID},
	}
	if n.RelatedID != nil {
		msg.Data["relatedId"] = *n.RelatedID
	}
	if _, err := s.push.Send(ctx, msg); err != nil {
		s.logger.Warn("Push notification failed", zap.String("userID", n.UserID), zap.Error(err))
	}
}

func (s *NotificationService) publish(ctx context.Context, n *models.Notification) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(n)
	if err != nil {
		s.logger.Warn("Failed to encode notification event", zap.String("notificationID", n.ID), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, s.queueName, body); err != nil {
		s.logger.Warn("Failed to publish notification event", zap.String("notificationID", n.ID), zap.Error(err))
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, rawUserID string) ([]*models.Notification, error) {
	userID, err := s.ResolveTarget(ctx, rawUserID)
	if err != nil {
		return nil, err
	}
	return s.notifications.ListByUser(ctx, userID)
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotificationNotFound, notificationID)
		}
		return err
	}
	return nil
}

// Deliver sends an outbox notification event.
func (s *NotificationService) Deliver(ctx context.Context, event *models.OutboxEvent) error {
	_, err := s.Send(ctx, NotificationInput{
		Target:    event.TargetRef,
		Title:     event.Title,
		Body:      event.Body,
		Type:      event.Type,
		RelatedID: event.RelatedID,
	})
	return err
}
