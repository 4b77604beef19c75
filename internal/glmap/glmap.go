// Package glmap describes the surface a map widget must expose to be driven
// through the action bridge.
//
// The widget itself (rendering, camera animation, event emission) lives
// elsewhere. This package only names what the bridge consumes: listener
// subscription, positional capability calls, and the debug overlay flags.
package glmap

import "errors"

// Map errors.
var (
	// ErrUnknownMethod indicates the map has no capability with the requested name.
	ErrUnknownMethod = errors.New("glmap: unknown method")

	// ErrArity indicates a capability was called with the wrong number of arguments.
	ErrArity = errors.New("glmap: wrong number of arguments")

	// ErrArgument indicates a capability argument has an unusable type or value.
	ErrArgument = errors.New("glmap: invalid argument")
)

// Listener receives the payload of a single map event.
//
// Implementations must be comparable (typically pointer types) because Off
// removes a listener by identity.
type Listener interface {
	HandleMapEvent(data any)
}

// Emitter is the subscription half of a map widget.
type Emitter interface {
	// On subscribes l to the named event.
	On(event string, l Listener)

	// Off removes a listener previously passed to On for the same event.
	// Removing an unknown listener is a no-op.
	Off(event string, l Listener)
}

// Map is a live map instance as seen by the bridge.
type Map interface {
	Emitter

	// Call invokes the named capability with positional arguments.
	Call(method string, args ...any) error

	// SetDebugFlag toggles one of the debug overlays.
	SetDebugFlag(flag DebugFlag, enabled bool)
}

// DebugFlag names a boolean debug overlay property on the map.
type DebugFlag string

// Debug overlay properties.
const (
	ShowCollisionBoxes    DebugFlag = "showCollisionBoxes"
	ShowTileBoundaries    DebugFlag = "showTileBoundaries"
	ShowOverdrawInspector DebugFlag = "showOverdrawInspector"
)

// DebugFlags lists every debug overlay property.
var DebugFlags = []DebugFlag{
	ShowCollisionBoxes,
	ShowTileBoundaries,
	ShowOverdrawInspector,
}
