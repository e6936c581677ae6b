package domain

import (
	"errors"
	"fmt"
)

// Lifecycle errors returned by the public server API.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running server.
	ErrAlreadyRunning = errors.New("inspectgw: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped server.
	ErrNotRunning = errors.New("inspectgw: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("inspectgw: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("inspectgw: invalid configuration")
)

// MsgDatesRequired is the client-facing validation message.
const MsgDatesRequired = "Both start and end dates are required."

// ValidationError reports a search request that cannot be executed.
type ValidationError struct {
	// Field names the first offending field, "start" or "end".
	Field string
}

func (e *ValidationError) Error() string {
	return MsgDatesRequired
}

// StorageOp identifies the database round trip that failed.
type StorageOp string

const (
	OpConnect StorageOp = "connect"
	OpExecute StorageOp = "execute"
	OpFetch   StorageOp = "fetch"
)

// StorageError wraps a failure reported by the database layer.
// Error returns the driver message unchanged.
type StorageError struct {
	Op  StorageOp
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage %s failed", e.Op)
	}
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
