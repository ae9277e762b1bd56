// Package airport holds the canonical airport record, ICAO code validation, the
// in-memory registry and its CSV boundary.
package airport

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/icao-airports/internal/geo"
)

var icaoCode = regexp.MustCompile(`^[A-Z]{4}$`)

// Airport is one registry entry. Values are treated as immutable; Code is the key.
type Airport struct {
	Name      string
	Latitude  float64
	Longitude float64
	Code      string
	Country   string
}

// ValidCode reports whether code is exactly four uppercase ASCII letters.
func ValidCode(code string) bool {
	return icaoCode.MatchString(code)
}

// CleanName normalizes a free-text name. Backticks become apostrophes so the name can
// be embedded in a template literal.
func CleanName(name string) string {
	return norm.NFC.String(strings.ReplaceAll(name, "`", "'"))
}

// Point returns the airport position.
func (a Airport) Point() geo.LatLon {
	return geo.LatLon{Lat: a.Latitude, Lon: a.Longitude}
}

// Prefix returns the first n letters of the code (the whole code if shorter).
func (a Airport) Prefix(n int) string {
	if n >= len(a.Code) {
		return a.Code
	}
	if n <= 0 {
		return ""
	}
	return a.Code[:n]
}

// DistanceTo returns the great-circle distance to b in kilometers.
func (a Airport) DistanceTo(b Airport) float64 {
	return geo.Distance(a.Point(), b.Point())
}
