package camera

import (
	"fmt"

	"github.com/dshills/mapbridge/internal/glmap"
)

func argAt(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func badArg(what string, v any) error {
	return fmt.Errorf("%w: %s: unexpected %T", glmap.ErrArgument, what, v)
}

func toNumber(what string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, badArg(what, v)
}

// toPair accepts two-element numeric sequences.
func toPair(what string, v any) (float64, float64, bool, error) {
	switch s := v.(type) {
	case [2]float64:
		return s[0], s[1], true, nil
	case []float64:
		if len(s) != 2 {
			return 0, 0, true, badArg(what, v)
		}
		return s[0], s[1], true, nil
	case []any:
		if len(s) != 2 {
			return 0, 0, true, badArg(what, v)
		}
		a, err := toNumber(what, s[0])
		if err != nil {
			return 0, 0, true, err
		}
		b, err := toNumber(what, s[1])
		if err != nil {
			return 0, 0, true, err
		}
		return a, b, true, nil
	}
	return 0, 0, false, nil
}

// toLngLat accepts LngLat, [lng, lat] and {lng|lon, lat}.
func toLngLat(what string, v any) (LngLat, error) {
	switch ll := v.(type) {
	case LngLat:
		return ll, nil
	case *LngLat:
		if ll != nil {
			return *ll, nil
		}
	case map[string]any:
		lngV, ok := ll["lng"]
		if !ok {
			lngV = ll["lon"]
		}
		lng, err := toNumber(what+".lng", lngV)
		if err != nil {
			return LngLat{}, err
		}
		lat, err := toNumber(what+".lat", ll["lat"])
		if err != nil {
			return LngLat{}, err
		}
		return LngLat{Lng: lng, Lat: lat}, nil
	}
	if a, b, ok, err := toPair(what, v); ok {
		return LngLat{Lng: a, Lat: b}, err
	}
	return LngLat{}, badArg(what, v)
}

// toPoint accepts Point, [x, y] and {x, y}.
func toPoint(what string, v any) (Point, error) {
	switch p := v.(type) {
	case Point:
		return p, nil
	case *Point:
		if p != nil {
			return *p, nil
		}
	case map[string]any:
		x, err := toNumber(what+".x", p["x"])
		if err != nil {
			return Point{}, err
		}
		y, err := toNumber(what+".y", p["y"])
		if err != nil {
			return Point{}, err
		}
		return Point{X: x, Y: y}, nil
	}
	if a, b, ok, err := toPair(what, v); ok {
		return Point{X: a, Y: b}, err
	}
	return Point{}, badArg(what, v)
}

// toBounds accepts Bounds, [[w, s], [e, n]] and [w, s, e, n].
func toBounds(what string, v any) (Bounds, error) {
	switch b := v.(type) {
	case Bounds:
		return b, nil
	case *Bounds:
		if b != nil {
			return *b, nil
		}
	case [4]float64:
		return Bounds{SW: LngLat{b[0], b[1]}, NE: LngLat{b[2], b[3]}}, nil
	case []any:
		switch len(b) {
		case 2:
			sw, err := toLngLat(what+".sw", b[0])
			if err != nil {
				return Bounds{}, err
			}
			ne, err := toLngLat(what+".ne", b[1])
			if err != nil {
				return Bounds{}, err
			}
			return Bounds{SW: sw, NE: ne}, nil
		case 4:
			var n [4]float64
			for i := range n {
				f, err := toNumber(what, b[i])
				if err != nil {
					return Bounds{}, err
				}
				n[i] = f
			}
			return Bounds{SW: LngLat{n[0], n[1]}, NE: LngLat{n[2], n[3]}}, nil
		}
	}
	return Bounds{}, badArg(what, v)
}

// toOptions accepts nil or a string-keyed map.
func toOptions(what string, v any) (map[string]any, error) {
	switch o := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return o, nil
	}
	return nil, badArg(what, v)
}

// cameraPatch is a partial camera update.
type cameraPatch struct {
	center  *LngLat
	zoom    *float64
	bearing *float64
	pitch   *float64
}

func toCameraPatch(what string, v any) (cameraPatch, error) {
	opts, err := toOptions(what, v)
	if err != nil {
		return cameraPatch{}, err
	}
	var p cameraPatch
	if c, ok := opts["center"]; ok {
		ll, err := toLngLat(what+".center", c)
		if err != nil {
			return p, err
		}
		p.center = &ll
	}
	for key, dst := range map[string]**float64{"zoom": &p.zoom, "bearing": &p.bearing, "pitch": &p.pitch} {
		raw, ok := opts[key]
		if !ok {
			continue
		}
		f, err := toNumber(what+"."+key, raw)
		if err != nil {
			return p, err
		}
		*dst = &f
	}
	return p, nil
}
