package region

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/icao-airports/internal/airport"
	"github.com/sells-group/icao-airports/internal/geo"
)

// Region is one single-polygon boundary with passthrough properties.
type Region struct {
	Polygon    *geom.Polygon
	Properties map[string]interface{}
}

// Regions returns the Polygon features of fc in order. MultiPolygon input must be
// split first.
func Regions(fc *geojson.FeatureCollection) ([]Region, error) {
	regions := make([]Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, ok := f.Geometry.(*geom.Polygon)
		if !ok {
			return nil, eris.Errorf("region: feature %d is %T, split multipolygons before assigning", i, f.Geometry)
		}
		regions = append(regions, Region{Polygon: p, Properties: f.Properties})
	}
	return regions, nil
}

// Skip records an airport that one containment test could not decide.
type Skip struct {
	Code   string
	Region int
	Reason string
}

// Assignment is the outcome of one assignment pass.
type Assignment struct {
	Space geo.Space
	// Codes holds, per region index, the codes assigned to it in test order.
	Codes [][]string
	// Unassigned lists the codes no region claimed, ascending.
	Unassigned []string
	// Indeterminate lists every undecidable test.
	Indeterminate []Skip
}

// Assigned returns the total number of assigned airports.
func (a *Assignment) Assigned() int {
	n := 0
	for _, codes := range a.Codes {
		n += len(codes)
	}
	return n
}

// Assigner places airports into regions in one planar space.
type Assigner struct {
	space geo.Space
	log   *zap.Logger
}

// NewAssigner creates an Assigner testing in space.
func NewAssigner(space geo.Space) *Assigner {
	return &Assigner{
		space: space,
		log:   zap.L().With(zap.String("component", "region.assign"), zap.Stringer("space", space)),
	}
}

// Assign walks regions in order and claims every remaining airport the region
// contains, deleting it from reg. The first containing region wins. Undecidable tests
// are recorded and skipped; airports left at the end are reported as unassigned.
func (a *Assigner) Assign(regions []Region, reg *airport.Registry) (*Assignment, error) {
	start := time.Now()
	out := &Assignment{
		Space: a.space,
		Codes: make([][]string, len(regions)),
	}

	for i, r := range regions {
		poly, err := geo.NewPolygon(r.Polygon, a.space)
		if err != nil {
			return nil, eris.Wrapf(err, "region: polygon %d", i)
		}
		a.log.Debug("testing region", zap.Int("index", i), zap.Int("of", len(regions)), zap.Int("remaining", reg.Len()))

		codes := []string{}
		for _, ap := range reg.Airports() {
			res := poly.Locate(ap.Point())
			switch res.Containment {
			case geo.Contained:
				codes = append(codes, ap.Code)
				reg.Delete(ap.Code)
			case geo.Indeterminate:
				out.Indeterminate = append(out.Indeterminate, Skip{Code: ap.Code, Region: i, Reason: res.Reason})
			}
		}
		out.Codes[i] = codes
	}

	out.Unassigned = reg.Codes()
	a.log.Info("assignment finished",
		zap.Int("regions", len(regions)),
		zap.Int("assigned", out.Assigned()),
		zap.Int("unassigned", len(out.Unassigned)),
		zap.Int("indeterminate_tests", len(out.Indeterminate)),
		zap.Duration("took", time.Since(start)),
	)
	if len(out.Unassigned) > 0 {
		a.log.Warn("airports not in any polygon", zap.Strings("codes", out.Unassigned))
	}
	return out, nil
}

// Annotate returns a copy of fc whose feature properties carry the assigned codes
// under property. fc must hold the regions the assignment was computed from.
func Annotate(fc *geojson.FeatureCollection, a *Assignment, property string) (*geojson.FeatureCollection, error) {
	if len(fc.Features) != len(a.Codes) {
		return nil, eris.Errorf("region: %d features but %d assignment slots", len(fc.Features), len(a.Codes))
	}
	if property == "" {
		property = DefaultProperty
	}

	out := &geojson.FeatureCollection{BBox: fc.BBox}
	for i, f := range fc.Features {
		props := copyProperties(f.Properties)
		props[property] = a.Codes[i]
		out.Features = append(out.Features, &geojson.Feature{
			ID:         f.ID,
			Geometry:   f.Geometry,
			Properties: props,
		})
	}
	return out, nil
}
