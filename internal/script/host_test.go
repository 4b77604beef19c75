package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mapbridge/internal/action"
	"github.com/dshills/mapbridge/internal/bridge"
	"github.com/dshills/mapbridge/internal/camera"
	"github.com/dshills/mapbridge/internal/glmap"
	"github.com/dshills/mapbridge/internal/mapstate"
	"github.com/dshills/mapbridge/internal/store"
)

type collector struct {
	actions []action.Action
	err     error
}

func (c *collector) dispatch(a action.Action) error {
	if c.err != nil {
		return c.err
	}
	c.actions = append(c.actions, a)
	return nil
}

type lines struct{ infos []string }

func (l *lines) Debug(string, ...any) {}
func (l *lines) Info(msg string, args ...any) {
	l.infos = append(l.infos, fmt.Sprintf(msg, args...))
}
func (l *lines) Warn(string, ...any)  {}
func (l *lines) Error(string, ...any) {}

func newHost(t *testing.T, c *collector, opts ...Option) *Host {
	t.Helper()
	h := NewHost(c.dispatch, opts...)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestHandleMethodDispatchesCommand(t *testing.T) {
	c := &collector{}
	h := newHost(t, c)

	require.NoError(t, h.Run(context.Background(), "zoom", `mapbox.map("m1"):zoomTo(5)`))

	require.Len(t, c.actions, 1)
	assert.Equal(t, action.Command{
		MapID: "m1",
		Type:  "internal-mapbox-zoomTo",
		Args:  []any{int64(5)},
	}, c.actions[0])
	assert.Equal(t, 1, h.Dispatched())
}

func TestHandleArgumentConversion(t *testing.T) {
	c := &collector{}
	h := newHost(t, c)

	code := `
local m = mapbox.map("m1")
m:setCenter({13.4, 52.5})
m:jumpTo({zoom = 3, bearing = 1.5})
m:setShowTileBoundaries(true)
m:sync()
`
	require.NoError(t, h.Run(context.Background(), "args", code))
	require.Len(t, c.actions, 4)

	assert.Equal(t, []any{[]any{13.4, 52.5}}, c.actions[0].(action.Command).Args)
	assert.Equal(t, []any{map[string]any{"zoom": int64(3), "bearing": 1.5}}, c.actions[1].(action.Command).Args)
	assert.Equal(t, []any{true}, c.actions[2].(action.Command).Args)
	assert.Equal(t, "internal-mapbox-sync", c.actions[3].ActionType())
	assert.Empty(t, c.actions[3].(action.Command).Args)
}

func TestHandleIDAndTypes(t *testing.T) {
	c := &collector{}
	log := &lines{}
	h := newHost(t, c, WithLogger(log))

	code := `
local m = mapbox.map("m1")
mapbox.log(m:id(), mapbox.types.zoomend, tostring(m))
print(#mapbox.capabilities)
`
	require.NoError(t, h.Run(context.Background(), "ids", code))
	assert.Equal(t, []string{
		`script: m1 mapbox-zoomend mapbox.map("m1")`,
		"script: 18",
	}, log.infos)
}

func TestDispatchTable(t *testing.T) {
	c := &collector{}
	h := newHost(t, c)

	code := `
mapbox.dispatch({type = "app/ready", count = 2})
mapbox.dispatch({type = "internal-mapbox-panBy", mapId = "m1", args = {{10, 20}}})
`
	require.NoError(t, h.Run(context.Background(), "table", code))
	require.Len(t, c.actions, 2)

	assert.Equal(t, action.Generic{Type: "app/ready", Fields: map[string]any{"count": int64(2)}}, c.actions[0])
	assert.Equal(t, action.Command{
		MapID: "m1",
		Type:  "internal-mapbox-panBy",
		Args:  []any{[]any{int64(10), int64(20)}},
	}, c.actions[1])

	err := h.Run(context.Background(), "bad", `mapbox.dispatch({count = 1})`)
	require.Error(t, err)
}

func TestDispatchEmptyArgsTable(t *testing.T) {
	c := &collector{}
	h := newHost(t, c)

	code := `
mapbox.dispatch({type = "internal-mapbox-stop", mapId = "m1", args = {}})
mapbox.dispatch({type = "internal-mapbox-easeTo", mapId = "m1", args = {zoom = 4}})
`
	require.NoError(t, h.Run(context.Background(), "args", code))
	require.Len(t, c.actions, 2)

	stop, ok := c.actions[0].(action.Command)
	require.True(t, ok)
	assert.Equal(t, action.InternalType("stop"), stop.Type)
	assert.Empty(t, stop.Args)
	assert.Equal(t, []any{map[string]any{"zoom": int64(4)}}, c.actions[1].(action.Command).Args)
}

func TestDispatchEmptyArgsReachesMap(t *testing.T) {
	b := bridge.New()
	st, err := store.New(mapstate.Reduce, mapstate.Initial(), b.Middleware())
	require.NoError(t, err)
	_, err = b.NewControl("m1").Attach(camera.New(camera.DefaultOptions()))
	require.NoError(t, err)

	h := NewHost(st.Dispatch)
	t.Cleanup(func() { _ = h.Close() })

	require.NoError(t, h.Run(context.Background(), "stop",
		`mapbox.dispatch({type = "internal-mapbox-stop", mapId = "m1", args = {}})`))
	assert.Equal(t, 1, st.State().Maps["m1"].Commands)
}

func TestDispatchErrorSurfaces(t *testing.T) {
	boom := errors.New("boom")
	c := &collector{err: boom}
	h := newHost(t, c)

	err := h.Run(context.Background(), "fail", `mapbox.map("m1"):stop()`)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "fail", serr.Name)
}

func TestPcallCanRecover(t *testing.T) {
	c := &collector{err: errors.New("boom")}
	h := newHost(t, c)

	code := `
local ok = pcall(function() mapbox.map("m1"):stop() end)
assert(not ok)
`
	require.NoError(t, h.Run(context.Background(), "pcall", code))
}

func TestSyntaxError(t *testing.T) {
	h := newHost(t, &collector{})
	err := h.Run(context.Background(), "syntax", `mapbox.map(`)
	var serr *Error
	require.ErrorAs(t, err, &serr)
	assert.Nil(t, serr.Cause)
}

func TestSandbox(t *testing.T) {
	h := newHost(t, &collector{})
	for _, code := range []string{
		`io.write("x")`,
		`os.exit(1)`,
		`dofile("x.lua")`,
		`load("return 1")`,
		`require("os")`,
	} {
		assert.Error(t, h.Run(context.Background(), "sandbox", code), code)
	}
}

func TestDispatchLimit(t *testing.T) {
	c := &collector{}
	h := newHost(t, c, WithMaxDispatches(3))

	err := h.Run(context.Background(), "loop", `for i = 1, 10 do mapbox.map("m1"):stop() end`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDispatchLimit)
	assert.True(t, IsLimit(err))
	assert.Len(t, c.actions, 3)

	// The budget is per run.
	require.NoError(t, h.Run(context.Background(), "once", `mapbox.map("m1"):stop()`))
}

func TestTimeout(t *testing.T) {
	h := newHost(t, &collector{}, WithTimeout(50*time.Millisecond))

	err := h.Run(context.Background(), "spin", `while true do end`)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, IsLimit(err))
}

func TestClosed(t *testing.T) {
	h := NewHost((&collector{}).dispatch)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Run(context.Background(), "x", ``), ErrClosed)
}

func TestRunFile(t *testing.T) {
	c := &collector{}
	h := newHost(t, c)

	path := filepath.Join(t.TempDir(), "camera.lua")
	require.NoError(t, os.WriteFile(path, []byte(`mapbox.map("m1"):resetNorth()`), 0o600))
	require.NoError(t, h.RunFile(context.Background(), path))
	require.Len(t, c.actions, 1)

	err := h.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScriptDrivesCamera(t *testing.T) {
	b := bridge.New()
	st, err := store.New(mapstate.Reduce, mapstate.Initial(), b.Middleware())
	require.NoError(t, err)

	m := camera.New(camera.DefaultOptions())
	_, err = b.NewControl("main").Attach(m)
	require.NoError(t, err)

	h := NewHost(st.Dispatch)
	t.Cleanup(func() { _ = h.Close() })

	code := `
local m = mapbox.map("main")
m:setCenter({13.4, 52.5})
m:zoomTo(5)
m:setShowCollisionBoxes(true)
`
	require.NoError(t, h.Run(context.Background(), "drive", code))

	snap := m.Snapshot()
	assert.Equal(t, 5.0, snap.Zoom)
	assert.InDelta(t, 52.5, snap.Center.Lat, 1e-9)
	assert.True(t, snap.Debug[glmap.ShowCollisionBoxes])
	assert.Equal(t, 5.0, st.State().Maps["main"].Camera.Zoom)

	err = h.Run(context.Background(), "bad-arg", `mapbox.map("main"):zoomTo("far")`)
	assert.ErrorIs(t, err, glmap.ErrArgument)
}
