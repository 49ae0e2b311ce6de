package backend

import (
	"errors"

	"github.com/FlorianLB/taskiq-redis/internal/envelope"
	"github.com/FlorianLB/taskiq-redis/internal/pool"
)

var (
	// ErrResultMissing reports that no entry exists for the requested
	// task identifier: never set, already consumed with KeepResults
	// disabled, or expired. A routine outcome, not a fault.
	ErrResultMissing = errors.New("result is missing")

	// ErrPoolTimeout reports that no store connection could be
	// acquired within the configured timeout. Saturation, not data
	// loss.
	ErrPoolTimeout = pool.ErrAcquireTimeout

	// ErrMalformedResult reports stored bytes that could not be
	// decoded. Only the backend writes these bytes, so this implies a
	// codec mismatch or external tampering.
	ErrMalformedResult = envelope.ErrMalformedPayload

	// ErrBackendClosed reports an operation attempted after Shutdown.
	ErrBackendClosed = errors.New("result backend is shut down")
)
