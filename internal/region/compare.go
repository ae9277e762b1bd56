package region

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Mismatch is the symmetric difference of one polygon's codes between two runs.
type Mismatch struct {
	Index        int
	OnlyInFirst  []string
	OnlyInSecond []string
}

// Compare diffs two parallel per-polygon code lists. Polygons whose sets agree are
// omitted. Mismatches are diagnostics, not failures; only differing polygon counts
// are an error.
func Compare(a, b [][]string) ([]Mismatch, error) {
	if len(a) != len(b) {
		return nil, eris.Errorf("region: cannot compare %d polygons with %d", len(a), len(b))
	}

	var out []Mismatch
	for i := range a {
		first, second := difference(a[i], b[i]), difference(b[i], a[i])
		if len(first) == 0 && len(second) == 0 {
			continue
		}
		out = append(out, Mismatch{Index: i, OnlyInFirst: first, OnlyInSecond: second})
	}
	return out, nil
}

// CompareCollections reads property from each feature of two annotated collections
// and compares them with Compare.
func CompareCollections(a, b *geojson.FeatureCollection, property string) ([]Mismatch, error) {
	ca, err := CodesOf(a, property)
	if err != nil {
		return nil, eris.Wrap(err, "region: first collection")
	}
	cb, err := CodesOf(b, property)
	if err != nil {
		return nil, eris.Wrap(err, "region: second collection")
	}
	return Compare(ca, cb)
}

// CodesOf extracts the per-feature code lists stored under property. A missing
// property counts as no codes.
func CodesOf(fc *geojson.FeatureCollection, property string) ([][]string, error) {
	if property == "" {
		property = DefaultProperty
	}
	out := make([][]string, len(fc.Features))
	for i, f := range fc.Features {
		codes, err := toCodes(f.Properties[property])
		if err != nil {
			return nil, eris.Wrapf(err, "region: feature %d property %s", i, property)
		}
		out[i] = codes
	}
	return out, nil
}

func toCodes(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return t, nil
	case []interface{}:
		codes := make([]string, 0, len(t))
		for _, c := range t {
			s, ok := c.(string)
			if !ok {
				return nil, eris.Errorf("code %v is %T, not a string", c, c)
			}
			codes = append(codes, s)
		}
		return codes, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return strings.Split(t, ","), nil
	default:
		return nil, eris.Errorf("unsupported value type %T", v)
	}
}

// difference returns the sorted codes of a that are not in b.
func difference(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, c := range b {
		in[c] = struct{}{}
	}
	var out []string
	seen := make(map[string]struct{}, len(a))
	for _, c := range a {
		if _, ok := in[c]; ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
