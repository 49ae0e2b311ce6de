package task

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Result represents the outcome of an executed task. Once stored it is
// never mutated in place; the backend replaces or deletes it wholesale.
type Result struct {
	// IsErr reports whether the task failed.
	IsErr bool `json:"is_err"`

	// ReturnValue is the encoded success value or error payload. It is
	// opaque to the backend and round-trips through storage verbatim.
	ReturnValue json.RawMessage `json:"return_value"`

	// ExecutionTime is how long the task ran, in seconds.
	ExecutionTime float64 `json:"execution_time"`

	// Log is diagnostic output captured during execution. Nil means no
	// log was captured; a pointer to "" is a captured, empty log.
	Log *string `json:"log,omitempty"`
}

// NewResult builds a Result with the given value encoded as the return
// payload.
func NewResult(isErr bool, value interface{}, executionTime float64) (Result, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode return value: %w", err)
	}
	return Result{
		IsErr:         isErr,
		ReturnValue:   data,
		ExecutionTime: executionTime,
	}, nil
}

// WithLog attaches captured diagnostic output to the result.
func (r Result) WithLog(log string) Result {
	r.Log = &log
	return r
}

// DecodeReturnValue decodes the return payload into v.
func (r Result) DecodeReturnValue(v interface{}) error {
	return json.Unmarshal(r.ReturnValue, v)
}

// NewID returns a fresh opaque task identifier. The host framework may
// supply its own identifiers instead; the backend only requires
// uniqueness.
func NewID() string {
	return uuid.NewString()
}
