package core

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"petcare-backend-go/internal/db"
	"petcare-backend-go/internal/models"
)

func TestParseUserRef(t *testing.T) {
	tests := []struct {
		raw    string
		kind   UserRefKind
		number *int64
	}{
		{raw: "42", kind: LegacyID, number: int64Ptr(42)},
		{raw: "user_42", kind: LegacyID},
		{raw: "aBcDeFgHiJkLmNoPqRsTuVwXyZ12", kind: FirebaseUID},
		{raw: "exactly20characters_", kind: LegacyID},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ref := ParseUserRef(tt.raw)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.number, ref.Number)
			assert.Equal(t, tt.raw, ref.String())
		})
	}
}

func int64Ptr(n int64) *int64 { return &n }

func TestUserResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, &models.User{ID: "user_42", OriginalID: int64Ptr(42), Name: "Ann", Email: "ann@example.com"})
	_, err := env.store.Create(ctx, db.UsersCollection, "legacy_str", map[string]interface{}{"name": "Old", "originalId": "7"})
	require.NoError(t, err)

	resolver := NewUserResolver(env.users)
	tests := []struct {
		raw  string
		want string
		err  error
	}{
		{raw: "user_42", want: "user_42"},
		{raw: "42", want: "user_42"},
		{raw: "7", want: "legacy_str"},
		{raw: "aBcDeFgHiJkLmNoPqRsTuVwXyZ12", want: "aBcDeFgHiJkLmNoPqRsTuVwXyZ12"},
		{raw: "99", err: ErrUserNotFound},
		{raw: "", err: ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := resolver.Resolve(ctx, ParseUserRef(tt.raw))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNotificationService_Send(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, &models.User{ID: "user_42", OriginalID: int64Ptr(42), Name: "Ann", Email: "ann@example.com", FCMToken: "device-token"})

	push := &fakePushSender{}
	publisher := &fakePublisher{}
	svc := NewNotificationService(env.users, env.notifications, NotificationChannels{Push: push, Publisher: publisher, QueueName: "notifications"}, env.logger)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	n, err := svc.Send(ctx, NotificationInput{Target: "42", Title: "Booking Created", Body: "Hi", Type: models.NotificationBookingCreated, RelatedID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "user_42", n.UserID)
	assert.Equal(t, fmt.Sprintf("user_42_%d", now.UnixMilli()), n.ID)
	assert.False(t, n.Read)
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, "b1", *n.RelatedID)

	// A second notification in the same millisecond gets the next free ID.
	second, err := svc.Send(ctx, NotificationInput{Target: "user_42", Title: "Again", Type: models.NotificationBookingConfirmed})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("user_42_%d", now.UnixMilli()+1), second.ID)

	require.Len(t, push.messages, 2)
	assert.Equal(t, "device-token", push.messages[0].Token)
	assert.Equal(t, "b1", push.messages[0].Data["relatedId"])

	require.Len(t, publisher.bodies, 2)
	assert.Equal(t, "notifications", publisher.queues[0])
	var published models.Notification
	require.NoError(t, json.Unmarshal(publisher.bodies[0], &published))
	assert.Equal(t, n.ID, published.ID)

	list, err := svc.ListForUser(ctx, "42")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, svc.MarkRead(ctx, n.ID))
	assert.ErrorIs(t, svc.MarkRead(ctx, "missing"), ErrNotificationNotFound)
}

func TestNotificationService_UnknownTargetFallsBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewNotificationService(env.users, env.notifications, NotificationChannels{}, zap.New(core))

	n, err := svc.Send(ctx, NotificationInput{Target: "42", Title: "Hi", Type: models.NotificationBookingCreated})
	require.NoError(t, err)
	assert.Equal(t, "42", n.UserID)

	warnings := logs.FilterMessage("No user matches notification target, using identifier as is").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "42", warnings[0].ContextMap()["target"])
}

func TestNotificationService_DeliverOutboxEvent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, &models.User{ID: "prov1", Name: "Vet", Email: "vet@example.com"})
	svc := NewNotificationService(env.users, env.notifications, NotificationChannels{}, env.logger)

	err := svc.Deliver(ctx, &models.OutboxEvent{TargetRef: "prov1", Title: "New Booking Request", Type: models.NotificationBookingRequest, RelatedID: "b9"})
	require.NoError(t, err)

	list, err := env.notifications.ListByUser(ctx, "prov1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationBookingRequest, list[0].Type)
}
