package bridge

import (
	"errors"
	"fmt"

	"github.com/dshills/mapbridge/internal/action"
)

// Bridge errors.
var (
	// ErrAlreadyAttached indicates Attach was called on an attached Control.
	ErrAlreadyAttached = errors.New("bridge: control already attached")

	// ErrMapInUse indicates another Control already holds the map id.
	ErrMapInUse = errors.New("bridge: map id in use")

	// ErrNilMap indicates Attach was called without a map.
	ErrNilMap = errors.New("bridge: nil map")
)

// InvocationError reports a capability or directive that could not be
// applied to a map instance.
type InvocationError struct {
	MapID  action.MapID
	Method string
	Err    error
}

// NewInvocationError creates a new InvocationError.
func NewInvocationError(id action.MapID, method string, err error) *InvocationError {
	return &InvocationError{MapID: id, Method: method, Err: err}
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("bridge: %s on map %q: %v", e.Method, e.MapID, e.Err)
}

func (e *InvocationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
