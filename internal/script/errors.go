package script

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when running a script on a closed host.
	ErrClosed = errors.New("script: host is closed")

	// ErrDispatchLimit is raised when a run exceeds its dispatch budget.
	ErrDispatchLimit = errors.New("script: dispatch limit exceeded")
)

// Error reports a failed script run.
type Error struct {
	Name  string // chunk name
	Err   error  // error reported by the Lua runtime
	Cause error  // Go error that raised it, if any
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Name, e.Err)
}

// Unwrap exposes both the runtime error and its Go cause.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Cause, e.Err}
}
