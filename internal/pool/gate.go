// Package pool bounds concurrent access to the underlying store.
package pool

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSize matches the default client connection pool size.
	DefaultSize = 10

	// DefaultAcquireTimeout caps how long a caller waits for a slot.
	DefaultAcquireTimeout = 10 * time.Second
)

// ErrAcquireTimeout indicates no connection slot freed up within the
// configured timeout. It signals saturation, not data loss.
var ErrAcquireTimeout = errors.New("timed out waiting for a store connection")

// Gate arbitrates a fixed number of connection slots among concurrent
// callers. Waiting blocks only the calling goroutine; slots are held by
// exactly one in-flight operation at a time.
type Gate struct {
	slots   chan struct{}
	timeout time.Duration
}

// NewGate creates a gate with the given slot count and acquire timeout.
// Non-positive values fall back to the defaults.
func NewGate(size int, timeout time.Duration) *Gate {
	if size < 1 {
		size = DefaultSize
	}
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}

	g := &Gate{
		slots:   make(chan struct{}, size),
		timeout: timeout,
	}
	for i := 0; i < size; i++ {
		g.slots <- struct{}{}
	}
	return g
}

// Acquire blocks until a slot frees up, the gate's timeout elapses, or
// ctx is canceled. On success the returned lease must be released;
// callers should defer Release immediately so the slot comes back on
// every exit path.
func (g *Gate) Acquire(ctx context.Context) (*Lease, error) {
	select {
	case <-g.slots:
		return &Lease{gate: g}, nil
	default:
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case <-g.slots:
		return &Lease{gate: g}, nil
	case <-timer.C:
		return nil, ErrAcquireTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of slots the gate arbitrates.
func (g *Gate) Size() int {
	return cap(g.slots)
}

// Lease is an exclusive hold on one connection slot.
type Lease struct {
	gate *Gate
	once sync.Once
}

// Release returns the slot to the gate. Calling Release more than once
// is safe; the slot is returned exactly once per acquisition.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.gate.slots <- struct{}{}
	})
}
