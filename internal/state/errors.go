package state

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMode is returned when a mode outside the closed set reaches the controller.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrNoMediaAvailable means there is nothing to insert in the current mode.
	// It is recoverable: the operation is aborted and state is unchanged.
	ErrNoMediaAvailable = errors.New("no media available")
)

// BackendError wraps a failed GadgetBackend call.
type BackendError struct {
	Op   string
	Mode Mode
	Err  error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s (%s): %v", e.Op, e.Mode, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// IsBackendError reports whether err carries a *BackendError.
func IsBackendError(err error) bool {
	var backendErr *BackendError
	return errors.As(err, &backendErr)
}
