// Package backend persists task results in Redis on behalf of an
// external task-execution framework. The framework owns scheduling,
// dispatch, and retry; this package only stores an outcome under an
// opaque task identifier and serves it back.
//
// Two implementations are provided behind one contract:
//   - Redis: a single Redis node
//   - RedisCluster: a Redis cluster, with keys routed by the cluster's
//     own slot mapping
//
// Both behave identically from the caller's point of view, including
// the error taxonomy and the delete-on-read policy.
package backend

import (
	"context"

	"github.com/FlorianLB/taskiq-redis/pkg/task"
)

// ResultBackend is the surface the host framework depends on.
type ResultBackend interface {
	// SetResult persists the outcome of a task, overwriting any prior
	// entry for the same identifier.
	SetResult(ctx context.Context, taskID string, result task.Result) error

	// GetResult retrieves a stored outcome. When the backend was built
	// with KeepResults disabled, a successful read deletes the entry.
	// A missing entry fails with ErrResultMissing.
	GetResult(ctx context.Context, taskID string, withLogs bool) (task.Result, error)

	// IsResultReady reports whether an entry currently exists for the
	// identifier.
	IsResultReady(ctx context.Context, taskID string) (bool, error)

	// Shutdown releases the connection pool and all held resources.
	// The backend must not be used afterwards.
	Shutdown() error
}
