package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TokenStore persists one-time magic-link tokens. Tokens are stored hashed
// and consumed exactly once.
type TokenStore interface {
	// SaveLoginToken stores a token hash for a user with a TTL.
	SaveLoginToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	// ConsumeLoginToken atomically looks up and deletes a token hash,
	// returning the user it was issued for. ErrInvalidToken if absent or
	// expired.
	ConsumeLoginToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
}

const loginTokenKeyPrefix = "magic_link:"

// RedisTokenStore keeps magic-link tokens in Redis, expiring them via TTL.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a new RedisTokenStore instance
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) SaveLoginToken(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	key := loginTokenKeyPrefix + tokenHash
	if err := s.client.Set(ctx, key, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store login token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) ConsumeLoginToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	key := loginTokenKeyPrefix + tokenHash
	val, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to consume login token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt login token value: %w", err)
	}
	return userID, nil
}
