package action

import "strings"

// Type prefixes. Internal command types carry both markers; externally
// visible notification types carry only the namespace.
const (
	Namespace      = "mapbox-"
	InternalMarker = "internal-"
)

// Special directive names. These are commands the bridge handles itself
// rather than forwarding to a map capability.
const (
	Sync                     = "sync"
	SetShowCollisionBoxes    = "setShowCollisionBoxes"
	SetShowTileBoundaries    = "setShowTileBoundaries"
	SetShowOverdrawInspector = "setShowOverdrawInspector"
)

// Unbounded marks a capability that accepts any number of trailing arguments.
const Unbounded = -1

// Capability declares a named operation and the number of positional
// arguments it accepts.
type Capability struct {
	Name    string
	MinArgs int
	MaxArgs int // Unbounded for no upper limit
}

// Accepts reports whether n positional arguments fit the capability's arity.
func (c Capability) Accepts(n int) bool {
	if n < c.MinArgs {
		return false
	}
	return c.MaxArgs == Unbounded || n <= c.MaxArgs
}

// Capabilities are the map methods reachable through command actions.
// Most follow the widget's (value, options?, eventData?) convention.
var Capabilities = []Capability{
	{Name: "setCenter", MinArgs: 1, MaxArgs: 2},
	{Name: "panBy", MinArgs: 1, MaxArgs: 3},
	{Name: "panTo", MinArgs: 1, MaxArgs: 3},
	{Name: "setZoom", MinArgs: 1, MaxArgs: 2},
	{Name: "zoomTo", MinArgs: 1, MaxArgs: 3},
	{Name: "zoomOut", MinArgs: 0, MaxArgs: 2},
	{Name: "zoomIn", MinArgs: 0, MaxArgs: 2},
	{Name: "setBearing", MinArgs: 1, MaxArgs: 2},
	{Name: "rotateTo", MinArgs: 1, MaxArgs: 3},
	{Name: "resetNorth", MinArgs: 0, MaxArgs: 2},
	{Name: "snapToNorth", MinArgs: 0, MaxArgs: 2},
	{Name: "setPitch", MinArgs: 1, MaxArgs: 2},
	{Name: "fitBounds", MinArgs: 1, MaxArgs: 3},
	{Name: "jumpTo", MinArgs: 1, MaxArgs: 2},
	{Name: "flyTo", MinArgs: 1, MaxArgs: 2},
	{Name: "easeTo", MinArgs: 1, MaxArgs: 2},
	{Name: "stop", MinArgs: 0, MaxArgs: 0},
	{Name: "setProjection", MinArgs: 1, MaxArgs: 1},
}

// Specials are directives handled by the bridge. Each produces a
// notification of the same name once applied.
var Specials = []Capability{
	{Name: Sync, MinArgs: 0, MaxArgs: Unbounded},
	{Name: SetShowCollisionBoxes, MinArgs: 1, MaxArgs: 1},
	{Name: SetShowTileBoundaries, MinArgs: 1, MaxArgs: 1},
	{Name: SetShowOverdrawInspector, MinArgs: 1, MaxArgs: 1},
}

// Events are the map-emitted events surfaced as notifications.
var Events = []string{
	"move",
	"movestart",
	"moveend",
	"zoom",
	"zoomstart",
	"zoomend",
	"rotate",
	"rotatestart",
	"rotateend",
	"pitch",
	"load",
}

// InternalType returns the command action type for a capability or directive.
func InternalType(name string) string {
	return InternalMarker + Namespace + name
}

// ExternalType returns the notification action type for an event or directive.
func ExternalType(name string) string {
	return Namespace + name
}

// IsInternal reports whether t is a command action type.
func IsInternal(t string) bool {
	return strings.HasPrefix(t, InternalMarker+Namespace)
}

// IsExternal reports whether t is a notification action type.
func IsExternal(t string) bool {
	return strings.HasPrefix(t, Namespace)
}

// NameOf strips the type prefix from a command or notification type.
// It returns t unchanged when neither prefix is present.
func NameOf(t string) string {
	if IsInternal(t) {
		return t[len(InternalMarker+Namespace):]
	}
	return strings.TrimPrefix(t, Namespace)
}

// Types maps every event and directive name to its notification type.
var Types = buildTypes()

func buildTypes() map[string]string {
	types := make(map[string]string, len(Events)+len(Specials))
	for _, e := range Events {
		types[e] = ExternalType(e)
	}
	for _, s := range Specials {
		types[s.Name] = ExternalType(s.Name)
	}
	return types
}

// Lookup finds the capability or directive addressed by a command type.
func Lookup(internalType string) (Capability, bool) {
	if !IsInternal(internalType) {
		return Capability{}, false
	}
	name := NameOf(internalType)
	for _, c := range Capabilities {
		if c.Name == name {
			return c, true
		}
	}
	for _, c := range Specials {
		if c.Name == name {
			return c, true
		}
	}
	return Capability{}, false
}
