package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/megaflix/internal/domain/repository"
)

const (
	// sessionKeyPrefix is the prefix for session keys in Redis.
	sessionKeyPrefix = "session:"
)

// RedisSessionStore implements repository.SessionStore using Redis as the backing store.
// Expiry is delegated to Redis key TTLs.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a new Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
	}
}

// Save stores the token with the specified TTL.
func (s *RedisSessionStore) Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.buildKey(token), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Lookup resolves a token to its user ID.
// Returns repository.ErrSessionNotFound on a miss.
func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := s.client.Get(ctx, s.buildKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, repository.ErrSessionNotFound
		}
		return uuid.Nil, fmt.Errorf("redis get: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse user ID: %w", err)
	}

	return userID, nil
}

// Delete removes a session from Redis.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.buildKey(token)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// buildKey constructs the Redis key for a session token.
func (s *RedisSessionStore) buildKey(token string) string {
	return sessionKeyPrefix + token
}

// Compile-time verification that RedisSessionStore implements repository.SessionStore.
var _ repository.SessionStore = (*RedisSessionStore)(nil)
