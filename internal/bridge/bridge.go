package bridge

import (
	"sync"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/glmap"
	"github.com/dshills/mapbridge/internal/registry"
	"github.com/dshills/mapbridge/internal/store"
)

// Bridge routes map commands to live instances and map events back into
// the store.
type Bridge struct {
	mu       sync.RWMutex
	dispatch store.Dispatch

	registry *registry.Registry
	logger   store.Logger
	replace  bool

	capabilities map[string]action.Capability // internal type -> capability
	directives   map[string]directive         // internal type -> handler
	events       []string
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithRegistry shares an existing registry instead of creating one.
func WithRegistry(r *registry.Registry) Option {
	return func(b *Bridge) {
		if r != nil {
			b.registry = r
		}
	}
}

// WithLogger sets the bridge logger.
func WithLogger(l store.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithReplace lets a Control take over a map id that is already attached.
// The earlier Control's listeners stay subscribed to its own instance but
// commands route to the newer one.
func WithReplace() Option {
	return func(b *Bridge) {
		b.replace = true
	}
}

// WithCapabilities adds capabilities to the routing table, replacing any
// existing entry with the same name.
func WithCapabilities(caps ...action.Capability) Option {
	return func(b *Bridge) {
		for _, c := range caps {
			b.capabilities[action.InternalType(c.Name)] = c
		}
	}
}

// WithEvents adds map events that Controls listen for.
func WithEvents(events ...string) Option {
	return func(b *Bridge) {
		for _, e := range events {
			if !containsString(b.events, e) {
				b.events = append(b.events, e)
			}
		}
	}
}

// New creates a bridge with the default vocabulary.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		dispatch:     noopDispatch,
		registry:     registry.New(),
		logger:       store.NopLogger{},
		capabilities: make(map[string]action.Capability, len(action.Capabilities)),
		directives:   defaultDirectives(),
		events:       append([]string(nil), action.Events...),
	}
	for _, c := range action.Capabilities {
		b.capabilities[action.InternalType(c.Name)] = c
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func noopDispatch(action.Action) error { return nil }

// Registry returns the registry of attached maps.
func (b *Bridge) Registry() *registry.Registry {
	return b.registry
}

// Lookup returns the map attached under id.
func (b *Bridge) Lookup(id action.MapID) (glmap.Map, bool) {
	return b.registry.Lookup(id)
}

// Events returns the events Controls subscribe to, in subscription order.
func (b *Bridge) Events() []string {
	return append([]string(nil), b.events...)
}

// Capability returns the capability routed for a command type.
func (b *Bridge) Capability(internalType string) (action.Capability, bool) {
	c, ok := b.capabilities[internalType]
	return c, ok
}

// setDispatch replaces the captured dispatch function.
func (b *Bridge) setDispatch(d store.Dispatch) {
	if d == nil {
		d = noopDispatch
	}
	b.mu.Lock()
	b.dispatch = d
	b.mu.Unlock()
}

// emit sends a notification through the captured dispatch function.
func (b *Bridge) emit(n action.Notification) error {
	b.mu.RLock()
	d := b.dispatch
	b.mu.RUnlock()
	return d(n)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
