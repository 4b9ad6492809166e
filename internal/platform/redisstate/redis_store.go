package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix namespaces session entries in the shared keyspace.
const sessionKeyPrefix = "logoforge:session:"

// RedisStore is the production SessionStore backed by Redis with native key
// expiry.
type RedisStore struct {
	client *redis.Client
}

var _ SessionStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore around an existing client.
func NewRedisStore(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisStore{client: client}, nil
}

func sessionKey(batchID uuid.UUID) string {
	return sessionKeyPrefix + batchID.String()
}

// Put implements SessionStore.Put.
func (s *RedisStore) Put(ctx context.Context, session Session, ttl time.Duration) error {
	if session.BatchID == uuid.Nil {
		return fmt.Errorf("session batch ID cannot be nil")
	}
	if ttl <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.BatchID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Get implements SessionStore.Get.
func (s *RedisStore) Get(ctx context.Context, batchID uuid.UUID) (Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(batchID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, fmt.Errorf("failed to read session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

// Delete implements SessionStore.Delete.
func (s *RedisStore) Delete(ctx context.Context, batchID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(batchID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
