// Package outlier rejects airports that sit far from every other airport sharing the
// first letter of their ICAO code.
package outlier

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/icao-airports/internal/airport"
)

// DefaultThresholdKM is the nearest-neighbour distance above which an airport is an
// outlier. Same-prefix airports about 850 km apart (LPPS/LPPM) stay below it.
const DefaultThresholdKM = 1000.0

// groupPrefixLen is the code prefix length used to form comparison groups.
const groupPrefixLen = 1

// Neighbor is the closest other airport of a group member.
type Neighbor struct {
	Code       string
	Name       string
	DistanceKM float64
}

// Finding is the nearest-neighbour result for one airport.
type Finding struct {
	Airport airport.Airport
	Nearest Neighbor
	Outlier bool
}

// Closest returns the nearest member of group other than from itself. Members are
// compared by code, never by value. ok is false when group has no other member. When
// several members are equally close the first in group order wins.
func Closest(from airport.Airport, group []airport.Airport) (Neighbor, bool) {
	best := Neighbor{DistanceKM: math.Inf(1)}
	found := false
	for _, other := range group {
		if other.Code == from.Code {
			continue
		}
		d := from.DistanceTo(other)
		if !found || d < best.DistanceKM {
			best = Neighbor{Code: other.Code, Name: other.Name, DistanceKM: d}
			found = true
		}
	}
	return best, found
}

// Detector flags outliers per prefix group.
type Detector struct {
	thresholdKM float64
	log         *zap.Logger
}

// NewDetector creates a Detector. A non-positive threshold selects DefaultThresholdKM.
func NewDetector(thresholdKM float64) *Detector {
	if thresholdKM <= 0 {
		thresholdKM = DefaultThresholdKM
	}
	return &Detector{
		thresholdKM: thresholdKM,
		log:         zap.L().With(zap.String("component", "outlier")),
	}
}

// ThresholdKM returns the configured threshold.
func (d *Detector) ThresholdKM() float64 {
	return d.thresholdKM
}

// Scan computes the nearest neighbour of every airport in its group. Airports in
// groups of fewer than two members have no neighbour and are omitted. The registry
// is not modified.
func (d *Detector) Scan(reg *airport.Registry) []Finding {
	groups := reg.GroupByPrefix(groupPrefixLen)

	var findings []Finding
	for _, prefix := range reg.Prefixes(groupPrefixLen) {
		members := groups[prefix]
		d.log.Debug("scanning group", zap.String("prefix", prefix), zap.Int("airports", len(members)))
		if len(members) < 2 {
			continue
		}
		for _, a := range members {
			nearest, ok := Closest(a, members)
			if !ok {
				continue
			}
			findings = append(findings, Finding{
				Airport: a,
				Nearest: nearest,
				Outlier: nearest.DistanceKM > d.thresholdKM,
			})
		}
	}
	return findings
}

// Detect returns only the outlier findings, ordered by code.
func (d *Detector) Detect(reg *airport.Registry) []Finding {
	var out []Finding
	for _, f := range d.Scan(reg) {
		if f.Outlier {
			d.log.Info("outlier",
				zap.String("code", f.Airport.Code),
				zap.String("name", f.Airport.Name),
				zap.String("nearest", f.Nearest.Code),
				zap.Float64("distance_km", f.Nearest.DistanceKM),
			)
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Airport.Code < out[j].Airport.Code })
	return out
}

// Prune deletes the given findings from reg and returns how many were removed. It is
// kept apart from Detect so detection always sees the full groups.
func Prune(reg *airport.Registry, findings []Finding) int {
	removed := 0
	for _, f := range findings {
		if reg.Delete(f.Airport.Code) {
			removed++
		}
	}
	return removed
}
