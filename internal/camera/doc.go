// Package camera is a headless map widget.
//
// It keeps the camera state a rendered map would have (center, zoom,
// bearing, pitch, projection, debug overlays) and emits the same events a
// rendered map emits when that state changes. Transitions are applied
// immediately; there is no animation clock, so flyTo and easeTo behave like
// jumpTo.
//
// Capabilities are called positionally through Call, following the
// (value, options?, eventData?) convention:
//
//	m := camera.New(camera.DefaultOptions())
//	m.Call("zoomTo", 5.0)
//	m.Call("panTo", []any{13.4, 52.5}, map[string]any{"duration": 0})
//	m.Call("jumpTo", map[string]any{"center": []any{0, 0}, "bearing": 45})
//
// Listeners receive an Event carrying the camera after the change and the
// caller-supplied eventData, if any.
package camera
