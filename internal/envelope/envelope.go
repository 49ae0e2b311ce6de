// Package envelope encodes task results to and from the byte payload
// kept in the store. Only the backend itself ever writes these bytes,
// so a decode failure is a data-integrity signal, not a routine error.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/FlorianLB/taskiq-redis/pkg/task"
)

// ErrMalformedPayload indicates stored bytes that do not decode as a
// result envelope.
var ErrMalformedPayload = errors.New("malformed result payload")

// projection mirrors the stored envelope minus the log field. Decoding
// into it skips the log payload entirely; unknown JSON fields are
// discarded by the decoder without being materialized.
type projection struct {
	IsErr         bool            `json:"is_err"`
	ReturnValue   json.RawMessage `json:"return_value"`
	ExecutionTime float64         `json:"execution_time"`
}

// Encode serializes r in full. The encoding is lossless: the return
// payload is carried verbatim, execution time keeps full float64
// precision, and an absent log stays distinguishable from an empty one.
func Encode(r task.Result) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return data, nil
}

// Decode deserializes a stored envelope. When withLogs is false the
// returned record's Log is nil regardless of what was stored, and the
// log payload is never decoded.
func Decode(data []byte, withLogs bool) (task.Result, error) {
	if !withLogs {
		var p projection
		if err := json.Unmarshal(data, &p); err != nil {
			return task.Result{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		return task.Result{
			IsErr:         p.IsErr,
			ReturnValue:   p.ReturnValue,
			ExecutionTime: p.ExecutionTime,
		}, nil
	}

	var r task.Result
	if err := json.Unmarshal(data, &r); err != nil {
		return task.Result{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return r, nil
}
