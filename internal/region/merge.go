package region

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// MergeByPrefix collapses an annotated collection into one MultiPolygon feature per
// code prefix. Each polygon joins the prefix most common among its own codes, ties
// going to the smaller prefix. Polygons without codes are dropped. Output features are
// ordered by prefix and carry "prefix" plus the concatenated codes under property.
func MergeByPrefix(fc *geojson.FeatureCollection, property string, prefixLen int) (*geojson.FeatureCollection, error) {
	if prefixLen <= 0 {
		return nil, eris.Errorf("region: prefix length must be positive, got %d", prefixLen)
	}
	if property == "" {
		property = DefaultProperty
	}

	type group struct {
		mp    *geom.MultiPolygon
		codes []string
	}
	groups := make(map[string]*group)

	for i, f := range fc.Features {
		p, ok := f.Geometry.(*geom.Polygon)
		if !ok {
			return nil, eris.Errorf("region: feature %d is %T, expected a polygon", i, f.Geometry)
		}
		codes, err := toCodes(f.Properties[property])
		if err != nil {
			return nil, eris.Wrapf(err, "region: feature %d property %s", i, property)
		}
		if len(codes) == 0 {
			continue
		}

		prefix := mostCommonPrefix(codes, prefixLen)
		g, ok := groups[prefix]
		if !ok {
			g = &group{mp: geom.NewMultiPolygon(geom.XY)}
			groups[prefix] = g
		}
		if err := g.mp.Push(p.Clone()); err != nil {
			return nil, eris.Wrapf(err, "region: merge feature %d into %s", i, prefix)
		}
		g.codes = append(g.codes, codes...)
	}

	prefixes := make([]string, 0, len(groups))
	for p := range groups {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	out := &geojson.FeatureCollection{}
	for _, p := range prefixes {
		g := groups[p]
		out.Features = append(out.Features, &geojson.Feature{
			ID:       p,
			Geometry: g.mp,
			Properties: map[string]interface{}{
				"prefix": p,
				property: g.codes,
			},
		})
	}
	return out, nil
}

func mostCommonPrefix(codes []string, n int) string {
	counts := make(map[string]int)
	for _, c := range codes {
		if len(c) > n {
			c = c[:n]
		}
		counts[c]++
	}
	best, bestN := "", 0
	for p, k := range counts {
		if k > bestN || (k == bestN && p < best) {
			best, bestN = p, k
		}
	}
	return best
}
