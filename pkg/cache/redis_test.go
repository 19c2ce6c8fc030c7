package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"petcare-backend-go/internal/models"
)

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisConfig{Address: "127.0.0.1:1"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestRedisSessionStore_Defaults(t *testing.T) {
	store := NewRedisSessionStore(unreachableClient(t), 0, 0)
	assert.Equal(t, int64(10), store.maxMessages)
	assert.Equal(t, 24*time.Hour, store.ttl)
	assert.Equal(t, "assistant:session:abc", store.key("abc"))
}

func TestRedisSessionStore_PropagatesErrors(t *testing.T) {
	ctx := context.Background()
	store := NewRedisSessionStore(unreachableClient(t), 10, time.Hour)

	_, err := store.History(ctx, "abc")
	assert.Error(t, err)

	err = store.Append(ctx, "abc", models.ChatTurn{Role: "user", Content: "hi"})
	assert.Error(t, err)

	assert.NoError(t, store.Append(ctx, "abc"), "nothing to append")
}
