package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with a native TTL. This is the shared,
// expiring variant for multi-process deployments.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisStore) Create(ctx context.Context, claims *Claims) (string, error) {
	id := uuid.NewString()

	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session claims: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return id, nil
}

func (s *RedisStore) Resolve(ctx context.Context, id string) (*Claims, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	claims := new(Claims)
	if err := json.Unmarshal(data, claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session claims: %w", err)
	}

	return claims, nil
}

// Save replaces the claims while keeping the TTL fixed at creation time
func (s *RedisStore) Save(ctx context.Context, id string, claims *Claims) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("failed to marshal session claims: %w", err)
	}

	ok, err := s.client.SetXX(ctx, sessionKey(id), data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if !ok {
		return ErrNotFound
	}

	return nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
