package region

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// SplitMultiPolygons expands every MultiPolygon feature into one Polygon feature per
// part. Each part gets its own copy of the parent's properties and of its rings.
// Polygon features pass through unchanged; any other geometry is an error.
func SplitMultiPolygons(fc *geojson.FeatureCollection) (*geojson.FeatureCollection, error) {
	out := &geojson.FeatureCollection{BBox: fc.BBox}
	for i, f := range fc.Features {
		switch g := f.Geometry.(type) {
		case *geom.Polygon:
			out.Features = append(out.Features, f)
		case *geom.MultiPolygon:
			for j := 0; j < g.NumPolygons(); j++ {
				out.Features = append(out.Features, &geojson.Feature{
					ID:         f.ID,
					Geometry:   g.Polygon(j).Clone(),
					Properties: copyProperties(f.Properties),
				})
			}
		default:
			return nil, eris.Errorf("region: feature %d has unsupported geometry %T", i, f.Geometry)
		}
	}
	return out, nil
}
