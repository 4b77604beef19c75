package bridge_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/bridge"
	"github.com/dshills/mapbridge/internal/glmap"
	"github.com/dshills/mapbridge/internal/store"
)

type pipeline struct {
	bridge   *bridge.Bridge
	m        *fakeMap
	dispatch *recorder
	next     *recorder
	receive  store.Dispatch
}

func newPipeline(t *testing.T, opts ...bridge.Option) *pipeline {
	t.Helper()
	p := &pipeline{
		bridge:   bridge.New(opts...),
		m:        newFakeMap(),
		dispatch: &recorder{},
		next:     &recorder{},
	}
	_, err := p.bridge.NewControl("pie").Attach(p.m)
	require.NoError(t, err)
	p.receive = capture(p.bridge, p.dispatch, p.next.dispatch)
	return p
}

func TestUnregisteredMapPassesThrough(t *testing.T) {
	p := newPipeline(t)
	a := &action.Command{MapID: "choo", Type: "internal-mapbox-zoomTo", Args: []any{1}}

	require.NoError(t, p.receive(a))

	assert.Empty(t, p.dispatch.actions)
	assert.Empty(t, p.m.calls)
	require.Len(t, p.next.actions, 1)
	assert.Same(t, a, p.next.actions[0])
}

func TestUntargetedActionPassesThrough(t *testing.T) {
	p := newPipeline(t)
	a := &action.Generic{Type: "app/boot"}

	require.NoError(t, p.receive(a))
	require.NoError(t, p.receive(nil))

	assert.Empty(t, p.dispatch.actions)
	assert.Empty(t, p.m.calls)
	require.Len(t, p.next.actions, 2)
	assert.Same(t, a, p.next.actions[0])
}

func TestNilPointerActionPassesThrough(t *testing.T) {
	p := newPipeline(t)
	var cmd *action.Command

	require.NoError(t, p.receive(cmd))

	assert.Empty(t, p.m.calls)
	assert.Len(t, p.next.actions, 1)
}

func TestCapabilitiesInvokeMap(t *testing.T) {
	for _, c := range action.Capabilities {
		t.Run(c.Name, func(t *testing.T) {
			p := newPipeline(t)
			args := make([]any, c.MinArgs)
			for i := range args {
				args[i] = i + 1
			}
			a := &action.Command{MapID: "pie", Type: action.InternalType(c.Name), Args: args}

			require.NoError(t, p.receive(a))

			assert.Empty(t, p.dispatch.actions, "capabilities do not dispatch")
			require.Len(t, p.m.calls, 1)
			assert.Equal(t, c.Name, p.m.calls[0].method)
			assert.Equal(t, args, p.m.calls[0].args)
			require.Len(t, p.next.actions, 1)
			assert.Same(t, a, p.next.actions[0])
		})
	}
}

func TestCapabilityPositionalArgs(t *testing.T) {
	p := newPipeline(t)
	require.NoError(t, p.receive(action.Create("panTo", "pie", 1, 2, 3)))

	require.Len(t, p.m.calls, 1)
	assert.Equal(t, call{"panTo", []any{1, 2, 3}}, p.m.calls[0])
}

func TestSyncDispatchesNotification(t *testing.T) {
	p := newPipeline(t)
	a := &action.Generic{
		Type:   "internal-mapbox-sync",
		MapID:  "pie",
		Fields: map[string]any{"foo": "bar"},
	}

	require.NoError(t, p.receive(a))

	require.Len(t, p.dispatch.actions, 1)
	assert.Equal(t, action.Notification{Map: p.m, MapID: "pie", Type: "mapbox-sync"}, p.dispatch.actions[0])
	require.Len(t, p.next.actions, 1)
	assert.Same(t, a, p.next.actions[0])
	assert.Empty(t, p.m.calls)
}

func TestDebugFlagDirectives(t *testing.T) {
	tests := []struct {
		name string
		flag glmap.DebugFlag
	}{
		{action.SetShowCollisionBoxes, glmap.ShowCollisionBoxes},
		{action.SetShowTileBoundaries, glmap.ShowTileBoundaries},
		{action.SetShowOverdrawInspector, glmap.ShowOverdrawInspector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPipeline(t)
			a := &action.Command{MapID: "pie", Type: action.InternalType(tt.name), Args: []any{true}}

			require.NoError(t, p.receive(a))

			assert.True(t, p.m.flags[tt.flag])
			require.Len(t, p.dispatch.actions, 1)
			assert.Equal(t, action.Notification{
				Map:   p.m,
				MapID: "pie",
				Type:  "mapbox-" + tt.name,
			}, p.dispatch.actions[0])
			require.Len(t, p.next.actions, 1)
			assert.Same(t, a, p.next.actions[0])
		})
	}
}

func TestDebugFlagRequiresBool(t *testing.T) {
	p := newPipeline(t)

	err := p.receive(action.Create(action.SetShowTileBoundaries, "pie", "yes"))
	assert.ErrorIs(t, err, glmap.ErrArgument)

	err = p.receive(action.Create(action.SetShowTileBoundaries, "pie"))
	assert.ErrorIs(t, err, glmap.ErrArity)

	assert.Empty(t, p.dispatch.actions)
	assert.Empty(t, p.next.actions)
}

func TestUnknownTypeOnRegisteredMap(t *testing.T) {
	p := newPipeline(t)
	note := &action.Notification{MapID: "pie", Type: "mapbox-move", Event: "move"}
	odd := &action.Command{MapID: "pie", Type: "internal-mapbox-teleport"}

	require.NoError(t, p.receive(note))
	require.NoError(t, p.receive(odd))

	assert.Empty(t, p.dispatch.actions)
	assert.Empty(t, p.m.calls)
	require.Len(t, p.next.actions, 2)
	assert.Same(t, note, p.next.actions[0])
	assert.Same(t, odd, p.next.actions[1])
}

func TestArityEnforcedBeforeCall(t *testing.T) {
	p := newPipeline(t)

	err := p.receive(action.Create("stop", "pie", 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, glmap.ErrArity)

	var ie *bridge.InvocationError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, action.MapID("pie"), ie.MapID)
	assert.Equal(t, "stop", ie.Method)

	assert.Empty(t, p.m.calls)
	assert.Empty(t, p.next.actions)
}

func TestMapErrorsPropagate(t *testing.T) {
	p := newPipeline(t)
	boom := errors.New("boom")
	p.m.failWith = boom

	err := p.receive(action.Create("zoomTo", "pie", 3))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, p.next.actions)
}

func TestCustomCapability(t *testing.T) {
	p := newPipeline(t, bridge.WithCapabilities(action.Capability{Name: "setFog", MinArgs: 1, MaxArgs: 1}))

	err := p.receive(action.Create("setFog", "pie", map[string]any{"range": []any{1, 2}}))
	assert.ErrorIs(t, err, glmap.ErrUnknownMethod, "the map decides what it supports")

	c, ok := p.bridge.Capability("internal-mapbox-setFog")
	require.True(t, ok)
	assert.Equal(t, 1, c.MaxArgs)
}

func TestNotificationDispatchErrorStopsForward(t *testing.T) {
	p := newPipeline(t)
	boom := errors.New("boom")
	p.dispatch.err = boom

	err := p.receive(action.Create(action.Sync, "pie"))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, p.next.actions)
}

func TestCommandsApplyInOrder(t *testing.T) {
	p := newPipeline(t)
	creators := action.Bind("pie")

	require.NoError(t, p.receive(creators["setZoom"](3)))
	require.NoError(t, p.receive(creators["setBearing"](90)))
	require.NoError(t, p.receive(creators["stop"]()))

	require.Len(t, p.m.calls, 3)
	assert.Equal(t, "setZoom", p.m.calls[0].method)
	assert.Equal(t, "setBearing", p.m.calls[1].method)
	assert.Equal(t, "stop", p.m.calls[2].method)
}
