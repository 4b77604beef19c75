// Package mapstate folds map notifications into a per-map view of camera
// state that UI code can render without touching live map instances.
package mapstate

import (
	"sort"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/camera"
)

// Snapshotter is implemented by map instances that can report their camera.
type Snapshotter interface {
	Snapshot() camera.Snapshot
}

// MapView is the reduced state of one map.
type MapView struct {
	MapID     action.MapID
	Camera    camera.Snapshot
	HasCamera bool
	LastEvent string // event or directive name of the latest notification
	Commands  int    // commands dispatched to this map
	Events    int    // notifications received from this map
	Syncs     int
}

// State is the reduced state of all maps seen so far.
type State struct {
	Maps map[action.MapID]MapView
	Last string // type of the latest map action
}

// Initial returns an empty state.
func Initial() State {
	return State{Maps: map[action.MapID]MapView{}}
}

// Reduce applies one action. State values are never mutated in place.
func Reduce(s State, a action.Action) State {
	switch v := a.(type) {
	case action.Notification:
		return reduceNotification(s, v)
	case *action.Notification:
		return reduceNotification(s, *v)
	case action.Command:
		return reduceCommand(s, v)
	case *action.Command:
		return reduceCommand(s, *v)
	}
	return s
}

func reduceCommand(s State, c action.Command) State {
	if c.MapID == "" {
		return s
	}
	next := s.with(c.MapID, func(v *MapView) {
		v.Commands++
	})
	next.Last = c.Type
	return next
}

func reduceNotification(s State, n action.Notification) State {
	if n.MapID == "" {
		return s
	}
	next := s.with(n.MapID, func(v *MapView) {
		v.Events++
		if n.Event != "" {
			v.LastEvent = n.Event
		} else {
			v.LastEvent = action.NameOf(n.Type)
		}
		if n.Type == action.ExternalType(action.Sync) {
			v.Syncs++
		}

		if ev, ok := n.EventData.(camera.Event); ok {
			v.Camera, v.HasCamera = ev.Camera, true
		} else if snap, ok := n.Map.(Snapshotter); ok {
			v.Camera, v.HasCamera = snap.Snapshot(), true
		}
	})
	next.Last = n.Type
	return next
}

// with returns a copy of s whose view for id has been passed through fn.
func (s State) with(id action.MapID, fn func(*MapView)) State {
	maps := make(map[action.MapID]MapView, len(s.Maps)+1)
	for k, v := range s.Maps {
		maps[k] = v
	}
	view, ok := maps[id]
	if !ok {
		view = MapView{MapID: id}
	}
	fn(&view)
	maps[id] = view
	return State{Maps: maps, Last: s.Last}
}

// Views returns every map view ordered by map id.
func (s State) Views() []MapView {
	out := make([]MapView, 0, len(s.Maps))
	for _, v := range s.Maps {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MapID < out[j].MapID })
	return out
}
