package action

import (
	"reflect"

	"github.com/dshills/mapbridge/internal/glmap"
)

// MapID identifies one logical map instance. It is supplied by the
// application and never generated or validated here.
type MapID string

// Action is anything that can flow through the store's dispatch pipeline.
type Action interface {
	ActionType() string
}

// Targeted is implemented by actions addressed to a specific map.
// An empty MapID means the action is not addressed to any map.
type Targeted interface {
	Action
	TargetMap() MapID
}

// IsNil reports whether a is nil or a nil pointer wrapped in the interface.
func IsNil(a Action) bool {
	if a == nil {
		return true
	}
	v := reflect.ValueOf(a)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// TargetOf returns the map an action is addressed to, or "" if none.
func TargetOf(a Action) MapID {
	if IsNil(a) {
		return ""
	}
	if t, ok := a.(Targeted); ok {
		return t.TargetMap()
	}
	return ""
}

// Command asks the bridge to invoke a capability or directive on a map.
type Command struct {
	MapID MapID
	Type  string
	Args  []any
}

// ActionType implements Action.
func (c Command) ActionType() string { return c.Type }

// TargetMap implements Targeted.
func (c Command) TargetMap() MapID { return c.MapID }

// Arg returns the positional argument at i, or nil when absent.
func (c Command) Arg(i int) any {
	if i < 0 || i >= len(c.Args) {
		return nil
	}
	return c.Args[i]
}

// Notification reports that a map emitted an event or that a directive was
// applied. Map is a back-reference to the live instance; the action does not
// own it.
type Notification struct {
	Map       glmap.Map
	MapID     MapID
	Type      string
	Event     string
	EventData any
}

// ActionType implements Action.
func (n Notification) ActionType() string { return n.Type }

// TargetMap implements Targeted.
func (n Notification) TargetMap() MapID { return n.MapID }

// Generic carries a host action the map vocabulary does not know about.
// It is produced by the wire decoder so arbitrary actions can share a stream
// with map actions.
type Generic struct {
	Type   string
	MapID  MapID
	Fields map[string]any
}

// ActionType implements Action.
func (g Generic) ActionType() string { return g.Type }

// TargetMap implements Targeted.
func (g Generic) TargetMap() MapID { return g.MapID }
