// Package cache provides the webhook delivery de-duplication stores.
package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/codops/backend/internal/domain/shared"
	"github.com/codops/backend/internal/infrastructure/config"
)

// FactoryOption configures NewIdempotencyStore
type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report the chosen store
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(o *factoryOptions) {
		o.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store (default) or fails startup.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(o *factoryOptions) {
		o.allowFallback = allow
	}
}

// NewIdempotencyStore picks the delivery store for the configuration:
// Redis when enabled and reachable, in-memory otherwise.
func NewIdempotencyStore(cfg config.RedisConfig, opts ...FactoryOption) (shared.IdempotencyStore, error) {
	o := factoryOptions{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.Enabled {
		o.logger.Info("Redis disabled, using in-memory webhook de-duplication")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err == nil {
		o.logger.Info("Using Redis webhook de-duplication",
			zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
		return store, nil
	}

	if !o.allowFallback {
		return nil, fmt.Errorf("redis required for webhook de-duplication: %w", err)
	}

	o.logger.Warn("Redis unavailable, falling back to in-memory webhook de-duplication; "+
		"retries reaching other instances will not be recognized",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
