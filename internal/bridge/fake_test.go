package bridge_test

import (
	"fmt"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/glmap"
)

type call struct {
	method string
	args   []any
}

type subscription struct {
	event    string
	listener glmap.Listener
}

// fakeMap records everything the bridge does to it.
type fakeMap struct {
	ons       []subscription
	offs      []subscription
	listeners map[string][]glmap.Listener
	calls     []call
	flags     map[glmap.DebugFlag]bool
	known     map[string]bool
	failWith  error
}

func newFakeMap() *fakeMap {
	known := make(map[string]bool)
	for _, c := range action.Capabilities {
		known[c.Name] = true
	}
	return &fakeMap{
		listeners: make(map[string][]glmap.Listener),
		flags:     make(map[glmap.DebugFlag]bool),
		known:     known,
	}
}

func (f *fakeMap) On(event string, l glmap.Listener) {
	f.ons = append(f.ons, subscription{event, l})
	f.listeners[event] = append(f.listeners[event], l)
}

func (f *fakeMap) Off(event string, l glmap.Listener) {
	f.offs = append(f.offs, subscription{event, l})
	list := f.listeners[event]
	for i, existing := range list {
		if existing == l {
			f.listeners[event] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (f *fakeMap) Call(method string, args ...any) error {
	if !f.known[method] {
		return fmt.Errorf("%w: %s", glmap.ErrUnknownMethod, method)
	}
	if f.failWith != nil {
		return f.failWith
	}
	f.calls = append(f.calls, call{method, args})
	return nil
}

func (f *fakeMap) SetDebugFlag(flag glmap.DebugFlag, enabled bool) {
	f.flags[flag] = enabled
}

func (f *fakeMap) emit(event string, data any) {
	for _, l := range append([]glmap.Listener(nil), f.listeners[event]...) {
		l.HandleMapEvent(data)
	}
}

func (f *fakeMap) listenerCount() int {
	n := 0
	for _, l := range f.listeners {
		n += len(l)
	}
	return n
}

// recorder captures dispatched actions.
type recorder struct {
	actions []action.Action
	err     error
}

func (r *recorder) dispatch(a action.Action) error {
	r.actions = append(r.actions, a)
	return r.err
}
