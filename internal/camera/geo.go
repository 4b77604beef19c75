package camera

import "math"

// Web Mercator limits.
const (
	MaxLatitude = 85.051129
	TileSize    = 512.0
)

// LngLat is a geographic coordinate in degrees.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Point is a screen offset in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is a geographic rectangle.
type Bounds struct {
	SW LngLat `json:"sw"`
	NE LngLat `json:"ne"`
}

// Center returns the bounds' center in projected space.
func (b Bounds) Center() LngLat {
	y := (mercatorY(b.SW.Lat) + mercatorY(b.NE.Lat)) / 2
	return LngLat{Lng: (b.SW.Lng + b.NE.Lng) / 2, Lat: unmercatorY(y)}
}

func worldSize(zoom float64) float64 {
	return TileSize * math.Pow(2, zoom)
}

// mercatorY maps a latitude to [0, 1] top to bottom.
func mercatorY(lat float64) float64 {
	lat = clamp(lat, -MaxLatitude, MaxLatitude)
	rad := lat * math.Pi / 180
	return (1 - math.Log(math.Tan(math.Pi/4+rad/2))/math.Pi) / 2
}

func unmercatorY(y float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*y))) * 180 / math.Pi
}

// project returns the world pixel of ll at zoom.
func project(ll LngLat, zoom float64) Point {
	ws := worldSize(zoom)
	return Point{
		X: (ll.Lng + 180) / 360 * ws,
		Y: mercatorY(ll.Lat) * ws,
	}
}

// unproject is the inverse of project.
func unproject(p Point, zoom float64) LngLat {
	ws := worldSize(zoom)
	return LngLat{
		Lng: p.X/ws*360 - 180,
		Lat: unmercatorY(p.Y / ws),
	}
}

func wrapLng(lng float64) float64 {
	if lng >= -180 && lng < 180 {
		return lng
	}
	w := math.Mod(lng+180, 360)
	if w < 0 {
		w += 360
	}
	return w - 180
}

// normalizeBearing maps b into (-180, 180].
func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b > 180 {
		b -= 360
	}
	if b <= -180 {
		b += 360
	}
	return b
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
