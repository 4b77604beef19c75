package camera

import (
	"fmt"
	"math"

	"github.com/dshills/mapbridge/internal/glmap"
)

type method func(m *Map, args []any) error

var methods map[string]method

func init() {
	methods = map[string]method{
		"setCenter":     setCenter,
		"panBy":         panBy,
		"panTo":         panTo,
		"setZoom":       setZoom,
		"zoomTo":        zoomTo,
		"zoomIn":        zoomBy(1),
		"zoomOut":       zoomBy(-1),
		"setBearing":    setBearing,
		"rotateTo":      rotateTo,
		"resetNorth":    resetNorth,
		"snapToNorth":   snapToNorth,
		"setPitch":      setPitch,
		"fitBounds":     fitBounds,
		"jumpTo":        jumpTo,
		"flyTo":         jumpTo,
		"easeTo":        jumpTo,
		"stop":          stop,
		"setProjection": setProjection,
	}
}

func arity(name string, args []any, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("%w: %s takes %d to %d, got %d", glmap.ErrArity, name, lo, hi, len(args))
	}
	return nil
}

// setCenter(center, eventData?)
func setCenter(m *Map, args []any) error {
	if err := arity("setCenter", args, 1, 2); err != nil {
		return err
	}
	center, err := toLngLat("center", args[0])
	if err != nil {
		return err
	}
	return m.transition(argAt(args, 1), func(cur target) (target, error) {
		cur.center = center
		return cur, nil
	})
}

// panBy(offset, options?, eventData?)
func panBy(m *Map, args []any) error {
	if err := arity("panBy", args, 1, 3); err != nil {
		return err
	}
	offset, err := toPoint("offset", args[0])
	if err != nil {
		return err
	}
	if _, err := toOptions("options", argAt(args, 1)); err != nil {
		return err
	}
	return m.transition(argAt(args, 2), func(cur target) (target, error) {
		p := project(cur.center, cur.zoom)
		p.X += offset.X
		p.Y += offset.Y
		cur.center = unproject(p, cur.zoom)
		return cur, nil
	})
}

// panTo(lnglat, options?, eventData?)
func panTo(m *Map, args []any) error {
	if err := arity("panTo", args, 1, 3); err != nil {
		return err
	}
	center, err := toLngLat("lnglat", args[0])
	if err != nil {
		return err
	}
	if _, err := toOptions("options", argAt(args, 1)); err != nil {
		return err
	}
	return m.transition(argAt(args, 2), func(cur target) (target, error) {
		cur.center = center
		return cur, nil
	})
}

// setZoom(zoom, eventData?)
func setZoom(m *Map, args []any) error {
	if err := arity("setZoom", args, 1, 2); err != nil {
		return err
	}
	zoom, err := toNumber("zoom", args[0])
	if err != nil {
		return err
	}
	return m.transition(argAt(args, 1), func(cur target) (target, error) {
		cur.zoom = zoom
		return cur, nil
	})
}

// zoomTo(zoom, options?, eventData?)
func zoomTo(m *Map, args []any) error {
	if err := arity("zoomTo", args, 1, 3); err != nil {
		return err
	}
	zoom, err := toNumber("zoom", args[0])
	if err != nil {
		return err
	}
	if _, err := toOptions("options", argAt(args, 1)); err != nil {
		return err
	}
	return m.transition(argAt(args, 2), func(cur target) (target, error) {
		cur.zoom = zoom
		return cur, nil
	})
}

// zoomIn/zoomOut(options?, eventData?)
func zoomBy(delta float64) method {
	return func(m *Map, args []any) error {
		if err := arity("zoomBy", args, 0, 2); err != nil {
			return err
		}
		if _, err := toOptions("options", argAt(args, 0)); err != nil {
			return err
		}
		return m.transition(argAt(args, 1), func(cur target) (target, error) {
			cur.zoom += delta
			return cur, nil
		})
	}
}

// setBearing(bearing, eventData?)
func setBearing(m *Map, args []any) error {
	if err := arity("setBearing", args, 1, 2); err != nil {
		return err
	}
	bearing, err := toNumber("bearing", args[0])
	if err != nil {
		return err
	}
	return m.transition(argAt(args, 1), func(cur target) (target, error) {
		cur.bearing = bearing
		return cur, nil
	})
}

// rotateTo(bearing, options?, eventData?)
func rotateTo(m *Map, args []any) error {
	if err := arity("rotateTo", args, 1, 3); err != nil {
		return err
	}
	bearing, err := toNumber("bearing", args[0])
	if err != nil {
		return err
	}
	if _, err := toOptions("options", argAt(args, 1)); err != nil {
		return err
	}
	return m.transition(argAt(args, 2), func(cur target) (target, error) {
		cur.bearing = bearing
		return cur, nil
	})
}

// resetNorth(options?, eventData?)
func resetNorth(m *Map, args []any) error {
	if err := arity("resetNorth", args, 0, 2); err != nil {
		return err
	}
	if _, err := toOptions("options", argAt(args, 0)); err != nil {
		return err
	}
	return m.transition(argAt(args, 1), func(cur target) (target, error) {
		cur.bearing = 0
		return cur, nil
	})
}

// snapToNorth(options?, eventData?) resets the bearing only when it is
// within the snap threshold.
func snapToNorth(m *Map, args []any) error {
	if err := arity("snapToNorth", args, 0, 2); err != nil {
		return err
	}
	if _, err := toOptions("options", argAt(args, 0)); err != nil {
		return err
	}
	return m.transition(argAt(args, 1), func(cur target) (target, error) {
		if math.Abs(cur.bearing) < m.opts.BearingSnap {
			cur.bearing = 0
		}
		return cur, nil
	})
}

// setPitch(pitch, eventData?)
func setPitch(m *Map, args []any) error {
	if err := arity("setPitch", args, 1, 2); err != nil {
		return err
	}
	pitch, err := toNumber("pitch", args[0])
	if err != nil {
		return err
	}
	return m.transition(argAt(args, 1), func(cur target) (target, error) {
		cur.pitch = pitch
		return cur, nil
	})
}

// fitBounds(bounds, options?, eventData?) centers the bounds and picks the
// largest zoom that keeps them inside the viewport. Options: padding
// (pixels), maxZoom.
func fitBounds(m *Map, args []any) error {
	if err := arity("fitBounds", args, 1, 3); err != nil {
		return err
	}
	bounds, err := toBounds("bounds", args[0])
	if err != nil {
		return err
	}
	opts, err := toOptions("options", argAt(args, 1))
	if err != nil {
		return err
	}
	padding := 0.0
	if v, ok := opts["padding"]; ok {
		if padding, err = toNumber("options.padding", v); err != nil {
			return err
		}
	}
	maxZoom := math.Inf(1)
	if v, ok := opts["maxZoom"]; ok {
		if maxZoom, err = toNumber("options.maxZoom", v); err != nil {
			return err
		}
	}

	return m.transition(argAt(args, 2), func(cur target) (target, error) {
		w := float64(m.opts.Width) - 2*padding
		h := float64(m.opts.Height) - 2*padding
		if w <= 0 || h <= 0 {
			return cur, fmt.Errorf("%w: padding %v exceeds viewport", glmap.ErrArgument, padding)
		}
		spanX := math.Abs(bounds.NE.Lng-bounds.SW.Lng) / 360
		spanY := math.Abs(mercatorY(bounds.SW.Lat) - mercatorY(bounds.NE.Lat))

		zoom := m.opts.MaxZoom
		if spanX > 0 {
			zoom = math.Min(zoom, math.Log2(w/(TileSize*spanX)))
		}
		if spanY > 0 {
			zoom = math.Min(zoom, math.Log2(h/(TileSize*spanY)))
		}
		cur.zoom = math.Min(zoom, maxZoom)
		cur.center = bounds.Center()
		cur.bearing = 0
		return cur, nil
	})
}

// jumpTo(options, eventData?) with options center, zoom, bearing, pitch.
func jumpTo(m *Map, args []any) error {
	if err := arity("jumpTo", args, 1, 2); err != nil {
		return err
	}
	patch, err := toCameraPatch("options", args[0])
	if err != nil {
		return err
	}
	return m.transition(argAt(args, 1), func(cur target) (target, error) {
		if patch.center != nil {
			cur.center = *patch.center
		}
		if patch.zoom != nil {
			cur.zoom = *patch.zoom
		}
		if patch.bearing != nil {
			cur.bearing = *patch.bearing
		}
		if patch.pitch != nil {
			cur.pitch = *patch.pitch
		}
		return cur, nil
	})
}

// stop() ends any running animation. Transitions here are immediate, so
// there is nothing to stop.
func stop(_ *Map, args []any) error {
	return arity("stop", args, 0, 0)
}

// setProjection(projection) accepts a name or {name: ...}.
func setProjection(m *Map, args []any) error {
	if err := arity("setProjection", args, 1, 1); err != nil {
		return err
	}
	var name string
	switch p := args[0].(type) {
	case string:
		name = p
	case map[string]any:
		name, _ = p["name"].(string)
	}
	if name == "" {
		return badArg("projection", args[0])
	}
	m.mu.Lock()
	m.proj = name
	m.mu.Unlock()
	return nil
}
