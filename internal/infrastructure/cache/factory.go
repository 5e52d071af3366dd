package cache

import (
	"context"
	"fmt"
	"time"

	appentitlement "github.com/friendaudit/backend/internal/application/entitlement"
	"github.com/friendaudit/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StateStoreFactory creates entitlement state stores based on configuration
type StateStoreFactory struct {
	cfg                   config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// StateStoreFactoryOption is a functional option for configuring the factory
type StateStoreFactoryOption func(*StateStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StateStoreFactoryOption {
	return func(f *StateStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) StateStoreFactoryOption {
	return func(f *StateStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStateStoreFactory creates a new factory
func NewStateStoreFactory(cfg config.RedisConfig, opts ...StateStoreFactoryOption) *StateStoreFactory {
	f := &StateStoreFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable,
// otherwise an in-memory store. The returned close func releases the client
// or stops the in-memory janitor.
func (f *StateStoreFactory) CreateStore(ctx context.Context) (appentitlement.StateStore, func() error, error) {
	if !f.cfg.Enabled {
		f.logger.Info("Redis disabled, using in-memory entitlement state store")
		return f.inMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.cfg.Addr(),
		Password: f.cfg.Password,
		DB:       f.cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, f.pingTimeout)
	defer cancel()

	err := client.Ping(pingCtx).Err()
	if err == nil {
		f.logger.Info("Using Redis entitlement state store", zap.String("addr", f.cfg.Addr()))
		return NewRedisStateStore(client, DefaultStateKeyPrefix, f.cfg.StateTTL), client.Close, nil
	}
	_ = client.Close()

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for entitlement state but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory entitlement state store. "+
		"Instances will not share refreshed state.",
		zap.Error(err),
	)
	return f.inMemoryStore()
}

// inMemoryStore runs a janitor at the state TTL; the close func stops it
func (f *StateStoreFactory) inMemoryStore() (appentitlement.StateStore, func() error, error) {
	store := NewInMemoryStateStore(f.cfg.StateTTL)
	stop := store.StartJanitor(f.cfg.StateTTL)
	return store, func() error {
		stop()
		return nil
	}, nil
}
