package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mapbridge/internal/action"
)

func TestTypesTable(t *testing.T) {
	assert.Equal(t, map[string]string{
		"move":                     "mapbox-move",
		"movestart":                "mapbox-movestart",
		"moveend":                  "mapbox-moveend",
		"zoom":                     "mapbox-zoom",
		"zoomstart":                "mapbox-zoomstart",
		"zoomend":                  "mapbox-zoomend",
		"rotate":                   "mapbox-rotate",
		"rotatestart":              "mapbox-rotatestart",
		"rotateend":                "mapbox-rotateend",
		"pitch":                    "mapbox-pitch",
		"load":                     "mapbox-load",
		"sync":                     "mapbox-sync",
		"setShowCollisionBoxes":    "mapbox-setShowCollisionBoxes",
		"setShowTileBoundaries":    "mapbox-setShowTileBoundaries",
		"setShowOverdrawInspector": "mapbox-setShowOverdrawInspector",
	}, action.Types)
}

func TestTypePrefixes(t *testing.T) {
	names := append([]string{}, action.Events...)
	for _, c := range action.Capabilities {
		names = append(names, c.Name)
	}
	for _, c := range action.Specials {
		names = append(names, c.Name)
	}

	seen := make(map[string]string)
	for _, name := range names {
		ext := action.ExternalType(name)
		in := action.InternalType(name)
		assert.Equal(t, "mapbox-"+name, ext)
		assert.Equal(t, "internal-mapbox-"+name, in)

		for _, typ := range []string{ext, in} {
			prev, dup := seen[typ]
			assert.False(t, dup, "type %q produced by both %q and %q", typ, prev, name)
			seen[typ] = name
		}
	}
	assert.Len(t, seen, 2*len(names))
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "panTo", action.NameOf("internal-mapbox-panTo"))
	assert.Equal(t, "move", action.NameOf("mapbox-move"))
	assert.Equal(t, "app/other", action.NameOf("app/other"))
	assert.True(t, action.IsInternal("internal-mapbox-stop"))
	assert.False(t, action.IsInternal("mapbox-stop"))
	assert.True(t, action.IsExternal("mapbox-stop"))
}

func TestLookup(t *testing.T) {
	c, ok := action.Lookup("internal-mapbox-zoomTo")
	require.True(t, ok)
	assert.Equal(t, "zoomTo", c.Name)

	c, ok = action.Lookup(action.InternalType(action.Sync))
	require.True(t, ok)
	assert.Equal(t, action.Sync, c.Name)

	_, ok = action.Lookup("internal-mapbox-bogus")
	assert.False(t, ok)
	_, ok = action.Lookup("mapbox-zoomTo")
	assert.False(t, ok)
}

func TestCapabilityAccepts(t *testing.T) {
	panTo := action.Capability{Name: "panTo", MinArgs: 1, MaxArgs: 3}
	assert.False(t, panTo.Accepts(0))
	assert.True(t, panTo.Accepts(1))
	assert.True(t, panTo.Accepts(3))
	assert.False(t, panTo.Accepts(4))

	sync := action.Capability{Name: "sync", MaxArgs: action.Unbounded}
	assert.True(t, sync.Accepts(0))
	assert.True(t, sync.Accepts(100))
}

func TestTargetOfNilActions(t *testing.T) {
	var cmd *action.Command
	var note *action.Notification

	assert.True(t, action.IsNil(nil))
	assert.True(t, action.IsNil(cmd))
	assert.True(t, action.IsNil(note))
	assert.False(t, action.IsNil(action.Command{}))
	assert.False(t, action.IsNil(&action.Generic{Type: "x"}))

	assert.Equal(t, action.MapID(""), action.TargetOf(nil))
	assert.Equal(t, action.MapID(""), action.TargetOf(cmd))
	assert.Equal(t, action.MapID("m1"), action.TargetOf(&action.Command{MapID: "m1"}))
}
