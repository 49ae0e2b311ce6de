package backend

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/FlorianLB/taskiq-redis/internal/logger"
)

// RedisCluster is the result backend for a Redis cluster. Keys are
// routed to shards by the cluster's own slot mapping; everything the
// caller can observe matches the single-node backend.
type RedisCluster struct {
	*store
	client *redis.ClusterClient
}

var _ ResultBackend = (*RedisCluster)(nil)

// NewRedisCluster connects to a Redis cluster through the given entry
// points and returns a backend over it.
func NewRedisCluster(opts Options) (*RedisCluster, error) {
	opts = opts.withDefaults()
	if len(opts.ClusterAddrs) == 0 {
		return nil, fmt.Errorf("at least one cluster address is required")
	}

	client := redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:       opts.ClusterAddrs,
		Password:    opts.Password,
		PoolSize:    opts.MaxPoolSize,
		PoolTimeout: opts.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis cluster: %w", err)
	}

	b := newRedisCluster(client, opts)
	b.log.Debug("cluster result backend ready", logger.Fields{"addrs": opts.ClusterAddrs})
	return b, nil
}

// newRedisCluster wraps an already constructed cluster client. Split
// out so tests can inject a client with a custom slot layout.
func newRedisCluster(client *redis.ClusterClient, opts Options) *RedisCluster {
	return &RedisCluster{
		store:  newStore(client, opts),
		client: client,
	}
}

// Shutdown closes the owned cluster client, releasing all pooled
// connections. Operations on the backend after Shutdown fail with
// ErrBackendClosed.
func (b *RedisCluster) Shutdown() error {
	b.markClosed()
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis cluster client: %w", err)
	}
	return nil
}
