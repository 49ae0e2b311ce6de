package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FlorianLB/taskiq-redis/internal/logger"
)

const connectTimeout = 5 * time.Second

// Redis is the result backend for a single Redis node.
type Redis struct {
	*store
	client *redis.Client
}

var _ ResultBackend = (*Redis)(nil)

// NewRedis connects to a single Redis node and returns a backend over
// it. The client's own connection pool mirrors the gate's bounds.
func NewRedis(opts Options) (*Redis, error) {
	opts = opts.withDefaults()
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		PoolSize:    opts.MaxPoolSize,
		PoolTimeout: opts.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	b := &Redis{
		store:  newStore(client, opts),
		client: client,
	}
	b.log.Debug("result backend ready", logger.Fields{"addr": opts.Addr})
	return b, nil
}

// Shutdown closes the owned client, releasing all pooled connections.
// Operations on the backend after Shutdown fail with ErrBackendClosed.
func (b *Redis) Shutdown() error {
	b.markClosed()
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}
