package bridge

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/glmap"
	"github.com/dshills/mapbridge/internal/mount"
	"github.com/dshills/mapbridge/internal/registry"
)

// ControlState is the lifecycle state of a Control.
type ControlState int

const (
	// Detached is the initial state and the state after Detach.
	Detached ControlState = iota

	// Attached means the Control has a registered map and live listeners.
	Attached
)

// String returns a human-readable state name.
func (s ControlState) String() string {
	switch s {
	case Detached:
		return "detached"
	case Attached:
		return "attached"
	default:
		return "unknown"
	}
}

// Control owns one map id's registry entry and event subscriptions for as
// long as it is attached.
type Control struct {
	// Actions holds command creators bound to this control's map id.
	Actions action.BoundCreators

	bridge *Bridge
	mapID  action.MapID

	mu        sync.Mutex
	state     ControlState
	m         glmap.Map
	bindings  []binding
	container *mount.Node
}

type binding struct {
	event    string
	listener *eventListener
}

// eventListener turns one map event into a notification action.
type eventListener struct {
	bridge *Bridge
	m      glmap.Map
	mapID  action.MapID
	event  string
}

// HandleMapEvent implements glmap.Listener.
func (l *eventListener) HandleMapEvent(data any) {
	err := l.bridge.emit(action.Notification{
		Map:       l.m,
		MapID:     l.mapID,
		Type:      action.ExternalType(l.event),
		Event:     l.event,
		EventData: data,
	})
	if err != nil {
		l.bridge.logger.Error("map %s: notify %s: %v", l.mapID, l.event, err)
	}
}

// NewControl creates a detached Control for id.
func (b *Bridge) NewControl(id action.MapID) *Control {
	return &Control{
		Actions: action.Bind(id),
		bridge:  b,
		mapID:   id,
	}
}

// MapID returns the map id the Control was created for.
func (c *Control) MapID() action.MapID {
	return c.mapID
}

// State returns the current lifecycle state.
func (c *Control) State() ControlState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Map returns the attached map, or nil when detached.
func (c *Control) Map() glmap.Map {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m
}

// Container returns the mountable node handed out by Attach, or nil.
func (c *Control) Container() *mount.Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.container
}

// Listeners returns the number of live event subscriptions.
func (c *Control) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bindings)
}

// Attach registers m under the Control's map id, subscribes one listener per
// bridge event and returns a fresh container for the host to mount.
func (c *Control) Attach(m glmap.Map) (*mount.Node, error) {
	if m == nil {
		return nil, ErrNilMap
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Attached {
		return nil, ErrAlreadyAttached
	}

	if c.bridge.replace {
		c.bridge.registry.Register(c.mapID, m)
	} else if err := c.bridge.registry.Claim(c.mapID, m); err != nil {
		if errors.Is(err, registry.ErrTaken) {
			return nil, fmt.Errorf("%w: %q", ErrMapInUse, c.mapID)
		}
		return nil, err
	}
	c.m = m

	for _, event := range c.bridge.events {
		l := &eventListener{
			bridge: c.bridge,
			m:      m,
			mapID:  c.mapID,
			event:  event,
		}
		m.On(event, l)
		c.bindings = append(c.bindings, binding{event: event, listener: l})
	}

	c.container = mount.NewNode("div")
	c.state = Attached
	c.bridge.logger.Debug("attached map %s (%d listeners)", c.mapID, len(c.bindings))
	return c.container, nil
}

// Detach releases everything Attach acquired: listeners in subscription
// order, then the registry entry if it still names this Control's map, then
// the container. It is a no-op on a
// detached Control.
func (c *Control) Detach() *Control {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Attached {
		return c
	}

	for _, b := range c.bindings {
		c.m.Off(b.event, b.listener)
	}
	c.bindings = nil

	if !c.bridge.registry.Release(c.mapID, c.m) {
		c.bridge.logger.Debug("map %s was replaced; registry entry left in place", c.mapID)
	}

	if c.container != nil {
		c.container.Detach()
	}
	c.container = nil
	c.m = nil
	c.state = Detached

	c.bridge.logger.Debug("detached map %s", c.mapID)
	return c
}

// Close detaches the Control. It implements io.Closer.
func (c *Control) Close() error {
	c.Detach()
	return nil
}
