package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/redis/go-redis/v9"
)

// DefaultStateKeyPrefix namespaces entitlement state keys
const DefaultStateKeyPrefix = "entitlement:state:"

// RedisStateStore implements appentitlement.StateStore using Redis, so that
// every API instance serves the same refreshed state for a user
type RedisStateStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStateStore creates a store with an existing Redis client.
// ttl bounds how long a state survives without an explicit refresh.
func NewRedisStateStore(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStateStore {
	if keyPrefix == "" {
		keyPrefix = DefaultStateKeyPrefix
	}
	return &RedisStateStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the stored state of userID
func (s *RedisStateStore) Get(ctx context.Context, userID string) (appentitlement.State, bool, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return appentitlement.State{}, false, nil
	}
	if err != nil {
		return appentitlement.State{}, false, fmt.Errorf("failed to read entitlement state: %w", err)
	}

	var state appentitlement.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return appentitlement.State{}, false, fmt.Errorf("failed to decode entitlement state: %w", err)
	}
	return state, true, nil
}

// Put stores state with the configured TTL
func (s *RedisStateStore) Put(ctx context.Context, state appentitlement.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode entitlement state: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+state.UserID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write entitlement state: %w", err)
	}
	return nil
}

// Delete drops the stored state of userID
func (s *RedisStateStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to delete entitlement state: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisStateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

var _ appentitlement.StateStore = (*RedisStateStore)(nil)
