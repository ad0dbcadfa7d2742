package storage

import (
	"context"
	"log/slog"

	"github.com/yourorg/staffdesk/internal/infrastructure/redis"
)

const redisKeyPrefix = "staffdesk:state:"

// RedisClient is the command surface RedisStore needs. Satisfied by
// *redis.Client from internal/infrastructure/redis.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// RedisStore persists client state in Redis. Used for shared or
// kiosk installs where a session must follow the operator across
// machines.
type RedisStore struct {
	client RedisClient
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed store on an established client.
func NewRedisStore(client RedisClient, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, logger: logger}
}

// Get returns the raw stored value and whether it was present.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	v, err := s.client.Get(ctx, redisKeyPrefix+key)
	if err != nil {
		if !redis.IsMissing(err) {
			s.logger.Warn("failed to read state entry",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return v, true
}

// Set durably writes the value. Failures are logged, not returned.
func (s *RedisStore) Set(ctx context.Context, key, value string) {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value); err != nil {
		s.logger.Error("failed to write state entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Remove deletes the key.
func (s *RedisStore) Remove(ctx context.Context, key string) {
	if err := s.client.Delete(ctx, redisKeyPrefix+key); err != nil {
		s.logger.Warn("failed to remove state entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
