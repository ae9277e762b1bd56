// Package region assigns airports to boundary polygons. It loads polygon feature
// collections, splits multipolygons into independent features, runs first-match
// containment in raw or projected space and compares the two outcomes.
package region

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// DefaultProperty is the feature property that receives assigned airport codes.
const DefaultProperty = "airports_gps_code"

// ReadGeoJSON decodes a GeoJSON FeatureCollection.
func ReadGeoJSON(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "region: read geojson")
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "region: decode feature collection")
	}
	return &fc, nil
}

// LoadGeoJSON reads a FeatureCollection from path.
func LoadGeoJSON(path string) (*geojson.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	fc, err := ReadGeoJSON(f)
	if err != nil {
		return nil, eris.Wrapf(err, "region: load %s", path)
	}
	return fc, nil
}

// WriteGeoJSON encodes fc as indented JSON.
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "region: encode feature collection")
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return eris.Wrap(err, "region: indent feature collection")
	}
	out.WriteByte('\n')
	if _, err := w.Write(out.Bytes()); err != nil {
		return eris.Wrap(err, "region: write feature collection")
	}
	return nil
}

// SaveGeoJSON writes fc to path in one buffer.
func SaveGeoJSON(path string, fc *geojson.FeatureCollection) error {
	var buf bytes.Buffer
	if err := WriteGeoJSON(&buf, fc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "region: write %s", path)
	}
	return nil
}

// copyProperties returns a shallow copy so sibling features never share a map.
func copyProperties(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	return out
}
