package region

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/icao-airports/internal/airport"
	"github.com/sells-group/icao-airports/internal/geo"
)

func rect(minLon, minLat, maxLon, maxLat float64) *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}})
}

func feature(g geom.T, name string) *geojson.Feature {
	return &geojson.Feature{Geometry: g, Properties: map[string]interface{}{"name": name}}
}

const twoFeatures = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Portugal"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[-10, 36], [-6, 36], [-6, 42], [-10, 42], [-10, 36]]],
       [[[-32, 36], [-24, 36], [-24, 40], [-32, 40], [-32, 36]]]
     ]}},
    {"type": "Feature", "properties": {"name": "France"},
     "geometry": {"type": "Polygon", "coordinates": [
       [[-5, 42], [8, 42], [8, 51], [-5, 51], [-5, 42]]
     ]}}
  ]
}`

func TestReadGeoJSON(t *testing.T) {
	fc, err := ReadGeoJSON(strings.NewReader(twoFeatures))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.IsType(t, &geom.MultiPolygon{}, fc.Features[0].Geometry)
	assert.Equal(t, "France", fc.Features[1].Properties["name"])
}

func TestReadGeoJSON_Invalid(t *testing.T) {
	_, err := ReadGeoJSON(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestSplitMultiPolygons(t *testing.T) {
	fc, err := ReadGeoJSON(strings.NewReader(twoFeatures))
	require.NoError(t, err)
	mp := fc.Features[0].Geometry.(*geom.MultiPolygon)
	before := append([]float64(nil), mp.FlatCoords()...)

	out, err := SplitMultiPolygons(fc)
	require.NoError(t, err)
	require.Len(t, out.Features, 3)

	for _, f := range out.Features {
		assert.IsType(t, &geom.Polygon{}, f.Geometry)
	}
	assert.Equal(t, out.Features[0].Properties, out.Features[1].Properties)
	assert.Equal(t, "Portugal", out.Features[1].Properties["name"])
	assert.Equal(t, "France", out.Features[2].Properties["name"])

	// Parts own their coordinates and properties.
	out.Features[0].Geometry.(*geom.Polygon).FlatCoords()[0] = 99
	out.Features[0].Properties["name"] = "changed"
	assert.Equal(t, before, mp.FlatCoords())
	assert.Equal(t, "Portugal", out.Features[1].Properties["name"])
	assert.Equal(t, "Portugal", fc.Features[0].Properties["name"])
}

func TestSplitMultiPolygons_UnsupportedGeometry(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		feature(geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{1, 2}), "point"),
	}}
	_, err := SplitMultiPolygons(fc)
	assert.Error(t, err)
}

func TestRegions_RejectsMultiPolygon(t *testing.T) {
	fc, err := ReadGeoJSON(strings.NewReader(twoFeatures))
	require.NoError(t, err)
	_, err = Regions(fc)
	assert.Error(t, err)
}

func europe() *airport.Registry {
	return airport.NewRegistry(
		airport.Airport{Code: "LPPT", Name: "Lisbon", Latitude: 38.7813, Longitude: -9.1359, Country: "PT"},
		airport.Airport{Code: "LPPD", Name: "Ponta Delgada", Latitude: 37.7412, Longitude: -25.6979, Country: "PT"},
		airport.Airport{Code: "LFPG", Name: "Charles de Gaulle", Latitude: 49.0097, Longitude: 2.5479, Country: "FR"},
		airport.Airport{Code: "LFBZ", Name: "Biarritz", Latitude: 43.4684, Longitude: -1.5233, Country: "FR"},
		airport.Airport{Code: "KJFK", Name: "John F Kennedy", Latitude: 40.6398, Longitude: -73.7789, Country: "US"},
	)
}

func TestAssign_Partition(t *testing.T) {
	fc, err := ReadGeoJSON(strings.NewReader(twoFeatures))
	require.NoError(t, err)
	split, err := SplitMultiPolygons(fc)
	require.NoError(t, err)
	regions, err := Regions(split)
	require.NoError(t, err)

	for _, space := range []geo.Space{geo.SpaceRaw, geo.SpaceProjected} {
		t.Run(space.String(), func(t *testing.T) {
			reg := europe()
			all := reg.Codes()

			a, err := NewAssigner(space).Assign(regions, reg)
			require.NoError(t, err)

			assert.Equal(t, [][]string{{"LPPT"}, {"LPPD"}, {"LFBZ", "LFPG"}}, a.Codes)
			assert.Equal(t, []string{"KJFK"}, a.Unassigned)
			assert.Empty(t, a.Indeterminate)
			assert.Equal(t, 4, a.Assigned())
			assert.Equal(t, []string{"KJFK"}, reg.Codes())

			// Every code lands in exactly one place.
			seen := map[string]int{}
			for _, codes := range a.Codes {
				for _, c := range codes {
					seen[c]++
				}
			}
			for _, c := range a.Unassigned {
				seen[c]++
			}
			assert.Len(t, seen, len(all))
			for c, n := range seen {
				assert.Equal(t, 1, n, c)
			}
		})
	}
}

func TestAssign_FirstMatchWins(t *testing.T) {
	regions := []Region{
		{Polygon: rect(-10, 30, 10, 50)},
		{Polygon: rect(-5, 40, 5, 52)},
	}
	reg := airport.NewRegistry(
		airport.Airport{Code: "LFPG", Latitude: 49.0097, Longitude: 2.5479},
		airport.Airport{Code: "LFPO", Latitude: 48.7233, Longitude: 2.3794},
	)

	a, err := NewAssigner(geo.SpaceRaw).Assign(regions, reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"LFPG", "LFPO"}, a.Codes[0])
	assert.Empty(t, a.Codes[1])
	assert.Equal(t, 0, reg.Len())
}

func TestAssign_PoleIsIndeterminateNotFatal(t *testing.T) {
	antarctica := []Region{{Polygon: rect(-180, -90, 180, -60)}}
	newReg := func() *airport.Registry {
		return airport.NewRegistry(
			airport.Airport{Code: "NZSP", Name: "South Pole", Latitude: -90, Longitude: 0},
			airport.Airport{Code: "NZWD", Name: "Williams Field", Latitude: -77.8674, Longitude: 167.057},
		)
	}

	raw, err := NewAssigner(geo.SpaceRaw).Assign(antarctica, newReg())
	require.NoError(t, err)
	assert.Equal(t, []string{"NZSP", "NZWD"}, raw.Codes[0])

	projected, err := NewAssigner(geo.SpaceProjected).Assign(antarctica, newReg())
	require.NoError(t, err)
	assert.Equal(t, []string{"NZWD"}, projected.Codes[0])
	assert.Equal(t, []string{"NZSP"}, projected.Unassigned)
	require.Len(t, projected.Indeterminate, 1)
	assert.Equal(t, "NZSP", projected.Indeterminate[0].Code)
	assert.NotEmpty(t, projected.Indeterminate[0].Reason)

	mismatches, err := Compare(raw.Codes, projected.Codes)
	require.NoError(t, err)
	assert.Equal(t, []Mismatch{{Index: 0, OnlyInFirst: []string{"NZSP"}}}, mismatches)
}

func TestAnnotate(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		feature(rect(0, 0, 1, 1), "a"),
		feature(rect(2, 2, 3, 3), "b"),
	}}
	a := &Assignment{Codes: [][]string{{"AAAA"}, {}}}

	out, err := Annotate(fc, a, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA"}, out.Features[0].Properties[DefaultProperty])
	assert.Equal(t, []string{}, out.Features[1].Properties[DefaultProperty])
	assert.Equal(t, "b", out.Features[1].Properties["name"])
	assert.NotContains(t, fc.Features[0].Properties, DefaultProperty)

	_, err = Annotate(fc, &Assignment{Codes: [][]string{{}}}, "")
	assert.Error(t, err)
}

func TestAnnotate_RoundTripThroughGeoJSON(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		feature(rect(0, 0, 1, 1), "a"),
		feature(rect(2, 2, 3, 3), "b"),
	}}
	out, err := Annotate(fc, &Assignment{Codes: [][]string{{"AAAA", "AAAB"}, {}}}, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, out))
	back, err := ReadGeoJSON(&buf)
	require.NoError(t, err)

	codes, err := CodesOf(back, DefaultProperty)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA", "AAAB"}, codes[0])
	assert.Empty(t, codes[1])
}

func TestSaveAndLoadGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.geo.json")
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{feature(rect(0, 0, 1, 1), "a")}}

	require.NoError(t, SaveGeoJSON(path, fc))
	back, err := LoadGeoJSON(path)
	require.NoError(t, err)
	require.Len(t, back.Features, 1)
	assert.Equal(t, "a", back.Features[0].Properties["name"])

	_, err = LoadGeoJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	a := [][]string{{"LPPT", "LPPR"}, {"LFPG"}, {}}
	b := [][]string{{"LPPR", "LPPT"}, {"LFPO"}, {"NZSP"}}

	got, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, []Mismatch{
		{Index: 1, OnlyInFirst: []string{"LFPG"}, OnlyInSecond: []string{"LFPO"}},
		{Index: 2, OnlyInSecond: []string{"NZSP"}},
	}, got)

	_, err = Compare(a, b[:2])
	assert.Error(t, err)
}

func TestCompareCollections(t *testing.T) {
	a := &geojson.FeatureCollection{Features: []*geojson.Feature{
		{Geometry: rect(0, 0, 1, 1), Properties: map[string]interface{}{DefaultProperty: []interface{}{"AAAA", "AAAB"}}},
	}}
	b := &geojson.FeatureCollection{Features: []*geojson.Feature{
		{Geometry: rect(0, 0, 1, 1), Properties: map[string]interface{}{DefaultProperty: "AAAA"}},
	}}

	got, err := CompareCollections(a, b, DefaultProperty)
	require.NoError(t, err)
	assert.Equal(t, []Mismatch{{Index: 0, OnlyInFirst: []string{"AAAB"}}}, got)

	bad := &geojson.FeatureCollection{Features: []*geojson.Feature{
		{Geometry: rect(0, 0, 1, 1), Properties: map[string]interface{}{DefaultProperty: 3.0}},
	}}
	_, err = CompareCollections(a, bad, DefaultProperty)
	assert.Error(t, err)
}

func TestMergeByPrefix(t *testing.T) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{
		{Geometry: rect(-10, 36, -6, 42), Properties: map[string]interface{}{DefaultProperty: []string{"LPPT", "LPPR"}}},
		{Geometry: rect(-32, 36, -24, 40), Properties: map[string]interface{}{DefaultProperty: []interface{}{"LPPD"}}},
		{Geometry: rect(-5, 42, 8, 51), Properties: map[string]interface{}{DefaultProperty: []string{"LFPG", "LFPO", "LPXX"}}},
		{Geometry: rect(20, 20, 21, 21), Properties: map[string]interface{}{DefaultProperty: []string{}}},
	}}

	out, err := MergeByPrefix(fc, DefaultProperty, 2)
	require.NoError(t, err)
	require.Len(t, out.Features, 2)

	lf, lp := out.Features[0], out.Features[1]
	assert.Equal(t, "LF", lf.Properties["prefix"])
	assert.Equal(t, []string{"LFPG", "LFPO", "LPXX"}, lf.Properties[DefaultProperty])
	assert.Equal(t, 1, lf.Geometry.(*geom.MultiPolygon).NumPolygons())

	assert.Equal(t, "LP", lp.Properties["prefix"])
	assert.Equal(t, []string{"LPPT", "LPPR", "LPPD"}, lp.Properties[DefaultProperty])
	assert.Equal(t, 2, lp.Geometry.(*geom.MultiPolygon).NumPolygons())

	_, err = MergeByPrefix(fc, DefaultProperty, 0)
	assert.Error(t, err)
}

func TestMostCommonPrefix_TieTakesSmaller(t *testing.T) {
	assert.Equal(t, "LE", mostCommonPrefix([]string{"LPPT", "LEBL"}, 2))
	assert.Equal(t, "K", mostCommonPrefix([]string{"KJFK", "KLAX", "PHNL"}, 1))
}

func TestShapeToGeometry(t *testing.T) {
	// Outer rings are clockwise, the hole is counter-clockwise.
	outer := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	hole := []shp.Point{{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4}, {X: 2, Y: 2}}
	island := []shp.Point{{X: 20, Y: 20}, {X: 20, Y: 21}, {X: 21, Y: 21}, {X: 21, Y: 20}, {X: 20, Y: 20}}

	single := &shp.Polygon{NumParts: 2, Parts: []int32{0, 5}, Points: append(append([]shp.Point{}, outer...), hole...)}
	g, err := shapeToGeometry(single)
	require.NoError(t, err)
	p, ok := g.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, 2, p.NumLinearRings())

	points := append(append(append([]shp.Point{}, outer...), hole...), island...)
	multi := &shp.Polygon{NumParts: 3, Parts: []int32{0, 5, 10}, Points: points}
	g, err = shapeToGeometry(multi)
	require.NoError(t, err)
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())

	_, err = shapeToGeometry(&shp.Polygon{})
	assert.Error(t, err)
}

// cwRing is a clockwise (outer) shapefile ring around the given box.
func cwRing(minX, minY, maxX, maxY float64) []shp.Point {
	return []shp.Point{{X: minX, Y: minY}, {X: minX, Y: maxY}, {X: maxX, Y: maxY}, {X: maxX, Y: minY}, {X: minX, Y: minY}}
}

func TestLoadShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "borders.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("NAME", 20),
		shp.StringField("ISO_A2", 2),
	}))

	rows := []struct {
		name, iso string
		parts     [][]shp.Point
	}{
		{"Portugal", "PT", [][]shp.Point{cwRing(-10, 36, -6, 42), cwRing(-17.5, 32, -16, 33.5)}},
		{"France", "FR", [][]shp.Point{cwRing(-5, 42.5, 8, 51)}},
	}
	for _, r := range rows {
		poly := shp.Polygon(*shp.NewPolyLine(r.parts))
		idx := int(w.Write(&poly))
		require.NoError(t, w.WriteAttribute(idx, 0, r.name))
		require.NoError(t, w.WriteAttribute(idx, 1, r.iso))
	}
	w.Close()

	fc, err := LoadShapefile(path)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, map[string]interface{}{"NAME": "Portugal", "ISO_A2": "PT"}, fc.Features[0].Properties)
	assert.Equal(t, map[string]interface{}{"NAME": "France", "ISO_A2": "FR"}, fc.Features[1].Properties)

	mp, ok := fc.Features[0].Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, mp.NumPolygons())
	_, ok = fc.Features[1].Geometry.(*geom.Polygon)
	assert.True(t, ok)

	split, err := SplitMultiPolygons(fc)
	require.NoError(t, err)
	assert.Len(t, split.Features, 3)
}

func TestLoadShapefile_Missing(t *testing.T) {
	_, err := LoadShapefile(filepath.Join(t.TempDir(), "nope.shp"))
	assert.Error(t, err)
}
