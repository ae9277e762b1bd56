package geo

import "math"

// MaxMercatorLat is the latitude at which Web Mercator tiles are conventionally cut.
// Polygon vertices beyond it are clamped before projection.
const MaxMercatorLat = 85.05112878

// Mercator projects a point onto the conformal Mercator plane scaled by EarthRadiusKM,
// so planar distances near the equator read as kilometers. ok is false when the
// projection is not finite, which happens at the poles.
func Mercator(lat, lon float64) (x, y float64, ok bool) {
	phi := radians(lat)
	x = EarthRadiusKM * radians(lon)
	y = EarthRadiusKM * math.Log(math.Tan(math.Pi/4+phi/2))
	if math.IsNaN(y) || math.IsInf(y, 0) || math.Abs(lat) >= 90 {
		return x, y, false
	}
	return x, y, true
}

// clampLat limits a latitude to the projectable band.
func clampLat(lat float64) float64 {
	switch {
	case lat > MaxMercatorLat:
		return MaxMercatorLat
	case lat < -MaxMercatorLat:
		return -MaxMercatorLat
	default:
		return lat
	}
}
