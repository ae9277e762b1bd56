// Package crosscheck verifies the curated registry against external aerodrome lists.
package crosscheck

import (
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/sells-group/icao-airports/internal/airport"
)

// EASACodePath selects the ICAO codes of the EASA aerodrome dataset.
const EASACodePath = `data.#.ICAO airport code`

// Codes extracts the non-empty strings at path from a JSON document, in order.
func Codes(data []byte, path string) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, eris.New("crosscheck: invalid json")
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return nil, eris.Errorf("crosscheck: path %q not found", path)
	}

	var codes []string
	res.ForEach(func(_, v gjson.Result) bool {
		if c := strings.TrimSpace(v.String()); c != "" {
			codes = append(codes, c)
		}
		return true
	})
	return codes, nil
}

// MissingFromRegistry reads the EASA aerodrome list and returns the listed codes
// that reg does not hold, sorted and unique.
func MissingFromRegistry(r io.Reader, reg *airport.Registry) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "crosscheck: read aerodrome list")
	}
	codes, err := Codes(data, EASACodePath)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var missing []string
	for _, c := range codes {
		if reg.Has(c) {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		missing = append(missing, c)
	}
	sort.Strings(missing)
	return missing, nil
}
