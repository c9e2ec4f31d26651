package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ak/sba/internal/infrastructure/config"
	"github.com/ak/sba/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis wraps a go-redis client and the key prefix shared by all stores
type Redis struct {
	client *redis.Client
	prefix string
	logger *logger.Logger
}

// NewRedis creates a client; Connect verifies it
func NewRedis(cfg config.RedisConfig, log *logger.Logger) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: cfg.KeyPrefix,
		logger: log.WithComponent("redis"),
	}
}

// Connect pings the server
func (r *Redis) Connect(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	r.logger.Info("Connected to Redis", zap.String("addr", r.client.Options().Addr))
	return nil
}

// Client returns the underlying client
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Key namespaces name under the configured prefix
func (r *Redis) Key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + ":" + name
}

// Close closes the client
func (r *Redis) Close(_ context.Context) error {
	return r.client.Close()
}

// Health pings the server
func (r *Redis) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.client.Ping(ctx).Err()
}
