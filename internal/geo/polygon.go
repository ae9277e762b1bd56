package geo

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Space selects the planar representation a polygon and its test points live in.
type Space int

// Supported spaces.
const (
	// SpaceRaw uses longitude as x and latitude as y, in degrees.
	SpaceRaw Space = iota
	// SpaceProjected uses Mercator x/y in kilometers.
	SpaceProjected
)

// String returns the config spelling of the space.
func (s Space) String() string {
	if s == SpaceProjected {
		return "projected"
	}
	return "raw"
}

// ParseSpace parses "raw" or "projected" (also "mercator").
func ParseSpace(s string) (Space, error) {
	switch s {
	case "raw", "latlon", "":
		return SpaceRaw, nil
	case "projected", "mercator":
		return SpaceProjected, nil
	default:
		return SpaceRaw, eris.Errorf("geo: unknown space %q", s)
	}
}

// Polygon is an outer ring plus holes in a single planar space.
type Polygon struct {
	space  Space
	poly   *geom.Polygon
	bounds *geom.Bounds
}

// NewPolygon converts a lon/lat polygon into the requested space. Projected vertices
// are clamped to MaxMercatorLat so rings that touch a pole stay finite.
func NewPolygon(p *geom.Polygon, space Space) (*Polygon, error) {
	if p == nil || p.NumLinearRings() == 0 {
		return nil, eris.New("geo: polygon has no rings")
	}

	planar := p
	if space == SpaceProjected {
		coords := p.Coords()
		for _, ring := range coords {
			for i, c := range ring {
				x, y, ok := Mercator(clampLat(c.Y()), c.X())
				if !ok {
					return nil, eris.Errorf("geo: vertex (%f, %f) cannot be projected", c.Y(), c.X())
				}
				ring[i] = geom.Coord{x, y}
			}
		}
		projected, err := geom.NewPolygon(geom.XY).SetCoords(coords)
		if err != nil {
			return nil, eris.Wrap(err, "geo: build projected polygon")
		}
		planar = projected
	}

	return &Polygon{
		space:  space,
		poly:   planar,
		bounds: planar.Bounds(),
	}, nil
}

// Space returns the planar representation of the polygon.
func (p *Polygon) Space() Space {
	return p.space
}

// Contains reports whether the planar point (x, y) lies inside the outer ring and
// outside every hole. Points exactly on an edge may fall either way.
func (p *Polygon) Contains(x, y float64) bool {
	if x < p.bounds.Min(0) || x > p.bounds.Max(0) || y < p.bounds.Min(1) || y > p.bounds.Max(1) {
		return false
	}
	if !ringContains(p.poly.LinearRing(0), x, y) {
		return false
	}
	for i := 1; i < p.poly.NumLinearRings(); i++ {
		if ringContains(p.poly.LinearRing(i), x, y) {
			return false
		}
	}
	return true
}

// Locate tests a lon/lat point against the polygon after converting it into the
// polygon's space. A point that cannot be projected is Indeterminate.
func (p *Polygon) Locate(pt LatLon) Result {
	x, y := pt.Lon, pt.Lat
	if p.space == SpaceProjected {
		var ok bool
		x, y, ok = Mercator(pt.Lat, pt.Lon)
		if !ok {
			return Result{
				Containment: Indeterminate,
				Reason:      fmt.Sprintf("latitude %g has no finite Mercator projection", pt.Lat),
			}
		}
	}
	if p.Contains(x, y) {
		return Result{Containment: Contained}
	}
	return Result{Containment: NotContained}
}

// ringContains is the even-odd ray casting test against one ring.
func ringContains(ring *geom.LinearRing, x, y float64) bool {
	flat := ring.FlatCoords()
	stride := ring.Stride()
	n := len(flat) / stride
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := flat[i*stride], flat[i*stride+1]
		xj, yj := flat[j*stride], flat[j*stride+1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
