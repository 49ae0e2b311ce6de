package backend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FlorianLB/taskiq-redis/internal/envelope"
	"github.com/FlorianLB/taskiq-redis/internal/keys"
	"github.com/FlorianLB/taskiq-redis/internal/logger"
	"github.com/FlorianLB/taskiq-redis/internal/pool"
	"github.com/FlorianLB/taskiq-redis/pkg/task"
)

// store carries the behavior shared by both topologies. The client is
// the only part that differs: a *redis.Client for a single node, a
// *redis.ClusterClient when keys are routed across shards.
type store struct {
	client      redis.Cmdable
	gate        *pool.Gate
	scheme      keys.Scheme
	keepResults bool
	resultTTL   time.Duration
	log         *logger.Logger
	closed      atomic.Bool
}

func newStore(client redis.Cmdable, opts Options) *store {
	return &store{
		client:      client,
		gate:        pool.NewGate(opts.MaxPoolSize, opts.Timeout),
		scheme:      keys.New(opts.KeyPrefix),
		keepResults: opts.KeepResults,
		resultTTL:   opts.ResultTTL,
		log:         opts.Logger,
	}
}

// SetResult encodes and writes the entry for taskID, overwriting any
// prior entry unconditionally. The configured retention window is
// applied on every write.
func (s *store) SetResult(ctx context.Context, taskID string, result task.Result) error {
	if s.closed.Load() {
		return ErrBackendClosed
	}

	data, err := envelope.Encode(result)
	if err != nil {
		return err
	}

	lease, err := s.gate.Acquire(ctx)
	if err != nil {
		return err
	}
	defer lease.Release()

	key := s.scheme.ResultKey(taskID)
	if err := s.client.Set(ctx, key, data, s.resultTTL).Err(); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	s.log.Debug("result stored", logger.Fields{"task_id": taskID})
	return nil
}

// GetResult reads the entry for taskID. With keepResults disabled the
// read and the deletion happen as one store operation, so at most one
// reader ever sees the record.
func (s *store) GetResult(ctx context.Context, taskID string, withLogs bool) (task.Result, error) {
	if s.closed.Load() {
		return task.Result{}, ErrBackendClosed
	}

	lease, err := s.gate.Acquire(ctx)
	if err != nil {
		return task.Result{}, err
	}
	defer lease.Release()

	key := s.scheme.ResultKey(taskID)

	var data string
	if s.keepResults {
		data, err = s.client.Get(ctx, key).Result()
	} else {
		data, err = s.client.GetDel(ctx, key).Result()
	}
	if errors.Is(err, redis.Nil) {
		return task.Result{}, fmt.Errorf("%w: %s", ErrResultMissing, taskID)
	}
	if err != nil {
		return task.Result{}, fmt.Errorf("failed to get result: %w", err)
	}

	result, err := envelope.Decode([]byte(data), withLogs)
	if err != nil {
		s.log.Error("stored result payload is corrupt", logger.Fields{
			"task_id": taskID,
			"error":   err,
		})
		return task.Result{}, err
	}

	return result, nil
}

// IsResultReady reports whether an entry currently exists for taskID.
func (s *store) IsResultReady(ctx context.Context, taskID string) (bool, error) {
	if s.closed.Load() {
		return false, ErrBackendClosed
	}

	lease, err := s.gate.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer lease.Release()

	n, err := s.client.Exists(ctx, s.scheme.ResultKey(taskID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check result: %w", err)
	}
	return n > 0, nil
}

// markClosed flags the store so later operations fail fast.
func (s *store) markClosed() {
	s.closed.Store(true)
}
