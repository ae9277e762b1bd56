package region

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// LoadShapefile reads an ESRI polygon shapefile (e.g. Natural Earth admin-0 countries)
// into a FeatureCollection. Clockwise rings start a new polygon, counter-clockwise rings
// are holes of the polygon before them. dBASE attributes become string properties.
func LoadShapefile(path string) (*geojson.FeatureCollection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimSpace(strings.TrimRight(f.String(), "\x00"))
	}

	fc := &geojson.FeatureCollection{}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}

		g, err := shapeToGeometry(poly)
		if err != nil {
			zap.L().Debug("region: skipping malformed shape", zap.Error(err))
			skipped++
			continue
		}

		props := make(map[string]interface{}, len(names))
		for i, name := range names {
			val := strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
			props[name] = val
		}
		fc.Features = append(fc.Features, &geojson.Feature{Geometry: g, Properties: props})
	}

	if skipped > 0 {
		zap.L().Warn("region: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return fc, nil
}

// shapeToGeometry groups shapefile parts into polygons by ring orientation.
func shapeToGeometry(p *shp.Polygon) (geom.T, error) {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil, eris.New("region: empty polygon shape")
	}

	var polygons [][][]geom.Coord
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}

		ring := make([]geom.Coord, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, geom.Coord{p.Points[j].X, p.Points[j].Y})
		}

		if signedArea(ring) <= 0 || len(polygons) == 0 {
			polygons = append(polygons, [][]geom.Coord{ring})
			continue
		}
		last := len(polygons) - 1
		polygons[last] = append(polygons[last], ring)
	}

	switch len(polygons) {
	case 0:
		return nil, eris.New("region: polygon shape has no usable rings")
	case 1:
		return geom.NewPolygon(geom.XY).SetCoords(polygons[0])
	default:
		return geom.NewMultiPolygon(geom.XY).SetCoords(polygons)
	}
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring []geom.Coord) float64 {
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].X()*ring[j].Y() - ring[j].X()*ring[i].Y()
	}
	return sum / 2
}
