package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"petcare-backend-go/internal/models"
)

// RedisConfig contains options for connecting to Redis.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient creates a client and checks the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}
	logger.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return rdb, nil
}

// RedisSessionStore keeps assistant history in Redis lists, one list per session.
// Each list is trimmed to the most recent MaxMessages entries and expires after TTL of inactivity.
type RedisSessionStore struct {
	client      redis.Cmdable
	prefix      string
	maxMessages int64
	ttl         time.Duration
}

// NewRedisSessionStore keeps maxMessages turns per session, expiring idle sessions after ttl.
func NewRedisSessionStore(client redis.Cmdable, maxMessages int, ttl time.Duration) *RedisSessionStore {
	if maxMessages <= 0 {
		maxMessages = 10
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{client: client, prefix: "assistant:session:", maxMessages: int64(maxMessages), ttl: ttl}
}

func (s *RedisSessionStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// History returns the stored turns for a session, oldest first.
func (s *RedisSessionStore) History(ctx context.Context, sessionID string) ([]models.ChatTurn, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	turns := make([]models.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var turn models.ChatTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Append pushes turns, trims the list and refreshes the TTL.
func (s *RedisSessionStore) Append(ctx context.Context, sessionID string, turns ...models.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, turn := range turns {
		b, err := json.Marshal(turn)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	key := s.key(sessionID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append to session %s: %w", sessionID, err)
	}
	return nil
}
