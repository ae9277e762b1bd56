// Package geo provides the spherical and planar geometry used to curate airports:
// haversine distances, the Mercator projection and polygon containment.
package geo

import "math"

// EarthRadiusKM is the radius of the spherical Earth model, in kilometers.
const EarthRadiusKM = 6371.0

// LatLon is a point on the sphere in decimal degrees.
type LatLon struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point lies within [-90, 90] x [-180, 180].
func (p LatLon) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b LatLon) float64 {
	return HaversineKM(a.Lat, a.Lon, b.Lat, b.Lon)
}

// HaversineKM returns the great-circle distance in kilometers between two points given
// in decimal degrees. The atan2 form stays stable for near-antipodal points.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(radians(lat1))*math.Cos(radians(lat2))*sinLon*sinLon
	if a > 1 {
		a = 1
	}

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKM * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
