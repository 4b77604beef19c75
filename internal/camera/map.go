package camera

import (
	"fmt"
	"sync"

	"github.com/dshills/mapbridge/internal/glmap"
)

// Options configures a new Map.
type Options struct {
	Center      LngLat
	Zoom        float64
	Bearing     float64
	Pitch       float64
	MinZoom     float64
	MaxZoom     float64
	MaxPitch    float64
	BearingSnap float64 // snapToNorth threshold in degrees
	Width       int     // viewport in pixels
	Height      int
	Projection  string
}

// DefaultOptions returns the options of a freshly created map.
func DefaultOptions() Options {
	return Options{
		MinZoom:     0,
		MaxZoom:     22,
		MaxPitch:    85,
		BearingSnap: 7,
		Width:       1024,
		Height:      768,
		Projection:  "mercator",
	}
}

// Snapshot is the camera state at one instant.
type Snapshot struct {
	Center     LngLat
	Zoom       float64
	Bearing    float64
	Pitch      float64
	Projection string
	Debug      map[glmap.DebugFlag]bool
	Loaded     bool
}

// Event is the payload delivered to listeners.
type Event struct {
	Type   string
	Camera Snapshot
	Data   any // eventData passed by the caller, if any
}

// Map is a headless map instance. It is safe for concurrent use; listeners
// are invoked without internal locks held.
type Map struct {
	mu        sync.Mutex
	opts      Options
	center    LngLat
	zoom      float64
	bearing   float64
	pitch     float64
	proj      string
	loaded    bool
	debug     map[glmap.DebugFlag]bool
	listeners map[string][]glmap.Listener
}

// New creates a map with the given options.
func New(opts Options) *Map {
	if opts.MaxZoom <= opts.MinZoom {
		opts.MaxZoom = DefaultOptions().MaxZoom
	}
	if opts.MaxPitch <= 0 {
		opts.MaxPitch = DefaultOptions().MaxPitch
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = DefaultOptions().Width, DefaultOptions().Height
	}
	if opts.Projection == "" {
		opts.Projection = DefaultOptions().Projection
	}
	m := &Map{
		opts:      opts,
		proj:      opts.Projection,
		debug:     make(map[glmap.DebugFlag]bool),
		listeners: make(map[string][]glmap.Listener),
	}
	m.center = LngLat{Lng: wrapLng(opts.Center.Lng), Lat: clamp(opts.Center.Lat, -MaxLatitude, MaxLatitude)}
	m.zoom = clamp(opts.Zoom, opts.MinZoom, opts.MaxZoom)
	m.bearing = normalizeBearing(opts.Bearing)
	m.pitch = clamp(opts.Pitch, 0, opts.MaxPitch)
	return m
}

// On implements glmap.Emitter.
func (m *Map) On(event string, l glmap.Listener) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[event] = append(m.listeners[event], l)
}

// Off implements glmap.Emitter.
func (m *Map) Off(event string, l glmap.Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.listeners[event]
	for i, existing := range list {
		if existing == l {
			m.listeners[event] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(m.listeners[event]) == 0 {
		delete(m.listeners, event)
	}
}

// ListenerCount returns the number of listeners subscribed to event.
func (m *Map) ListenerCount(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners[event])
}

// SetDebugFlag implements glmap.Map.
func (m *Map) SetDebugFlag(flag glmap.DebugFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debug[flag] = enabled
}

// DebugFlag returns the current value of a debug overlay.
func (m *Map) DebugFlag(flag glmap.DebugFlag) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.debug[flag]
}

// Snapshot returns the current camera state.
func (m *Map) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Map) snapshotLocked() Snapshot {
	debug := make(map[glmap.DebugFlag]bool, len(m.debug))
	for k, v := range m.debug {
		debug[k] = v
	}
	return Snapshot{
		Center:     m.center,
		Zoom:       m.zoom,
		Bearing:    m.bearing,
		Pitch:      m.pitch,
		Projection: m.proj,
		Debug:      debug,
		Loaded:     m.loaded,
	}
}

// Load marks the map as loaded and emits "load". Subsequent calls do nothing.
func (m *Map) Load() {
	m.mu.Lock()
	if m.loaded {
		m.mu.Unlock()
		return
	}
	m.loaded = true
	m.mu.Unlock()
	m.fire([]string{"load"}, nil)
}

// Call implements glmap.Map.
func (m *Map) Call(method string, args ...any) error {
	fn, ok := methods[method]
	if !ok {
		return fmt.Errorf("%w: %s", glmap.ErrUnknownMethod, method)
	}
	return fn(m, args)
}

// Methods returns the names of every capability Call understands.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	return names
}

// target is the camera a transition moves towards.
type target struct {
	center  LngLat
	zoom    float64
	bearing float64
	pitch   float64
}

func (m *Map) currentLocked() target {
	return target{center: m.center, zoom: m.zoom, bearing: m.bearing, pitch: m.pitch}
}

// transition applies a camera change computed from the current camera and
// emits the resulting events. Movement events always fire; zoom, rotate and
// pitch events fire only for the parts that changed.
func (m *Map) transition(data any, change func(cur target) (target, error)) error {
	m.mu.Lock()
	from := m.currentLocked()
	to, err := change(from)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	m.center = LngLat{Lng: wrapLng(to.center.Lng), Lat: clamp(to.center.Lat, -MaxLatitude, MaxLatitude)}
	m.zoom = clamp(to.zoom, m.opts.MinZoom, m.opts.MaxZoom)
	m.bearing = normalizeBearing(to.bearing)
	m.pitch = clamp(to.pitch, 0, m.opts.MaxPitch)

	zoomed := m.zoom != from.zoom
	rotated := m.bearing != from.bearing
	pitched := m.pitch != from.pitch
	m.mu.Unlock()

	var events []string
	phases := []struct {
		suffix string
		move   string
	}{{"start", "movestart"}, {"", "move"}, {"end", "moveend"}}
	for _, phase := range phases {
		events = append(events, phase.move)
		if zoomed {
			events = append(events, "zoom"+phase.suffix)
		}
		if rotated {
			events = append(events, "rotate"+phase.suffix)
		}
		if pitched {
			events = append(events, "pitch"+phase.suffix)
		}
	}
	m.fire(events, data)
	return nil
}

// fire delivers events in order. Each listener sees the camera as it is
// when its event is delivered.
func (m *Map) fire(events []string, data any) {
	for _, name := range events {
		m.mu.Lock()
		listeners := append([]glmap.Listener(nil), m.listeners[name]...)
		snap := m.snapshotLocked()
		m.mu.Unlock()

		ev := Event{Type: name, Camera: snap, Data: data}
		for _, l := range listeners {
			l.HandleMapEvent(ev)
		}
	}
}
