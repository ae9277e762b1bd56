// Package monitoring records per-run Prometheus counters. A run owns a private
// registry; the CLI can flush it to a node-exporter textfile when it finishes.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

// Label values shared by the recording components.
const (
	OutcomeRetained      = "retained"
	OutcomeInvalidCode   = "invalid_code"
	OutcomeNoCountry     = "missing_country"
	OutcomeBadCoordinate = "invalid_coordinates"
	OutcomeDuplicate     = "duplicate"
	OutcomeMalformed     = "malformed"

	OutcomeAssigned      = "assigned"
	OutcomeUnassigned    = "unassigned"
	OutcomeIndeterminate = "indeterminate"
)

// Metrics bundles the counters of one curation run. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AirportsParsed    *prometheus.CounterVec
	Outliers          *prometheus.CounterVec
	RegionAssignments *prometheus.CounterVec
	RegionMismatches  prometheus.Counter
	ClusterLabels     *prometheus.CounterVec
	DownloadedBytes   prometheus.Counter
}

// NewMetrics registers every counter against a fresh registry.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		AirportsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airports_parsed_total",
			Help: "Source rows by parse outcome.",
		}, []string{"outcome"}),
		Outliers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airport_outliers_total",
			Help: "Airports rejected as geographic outliers, by code prefix.",
		}, []string{"prefix"}),
		RegionAssignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "region_assignments_total",
			Help: "Airport placement outcomes by planar space.",
		}, []string{"space", "outcome"}),
		RegionMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "region_mismatches_total",
			Help: "Polygons whose raw and projected assignments differ.",
		}),
		ClusterLabels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cluster_labels_total",
			Help: "Distinct non-noise cluster labels found, by code prefix.",
		}, []string{"prefix"}),
		DownloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "source_downloaded_bytes_total",
			Help: "Bytes written by the source download.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.AirportsParsed, m.Outliers, m.RegionAssignments, m.RegionMismatches, m.ClusterLabels, m.DownloadedBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, eris.Wrap(err, "monitoring: register collector")
		}
	}
	return m, nil
}

// Registry exposes the run registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AddParsed counts n rows with the given outcome.
func (m *Metrics) AddParsed(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.AirportsParsed.WithLabelValues(outcome).Add(float64(n))
}

// IncOutlier counts one rejected airport.
func (m *Metrics) IncOutlier(prefix string) {
	if m == nil {
		return
	}
	m.Outliers.WithLabelValues(prefix).Inc()
}

// AddAssignments counts n placement outcomes in space.
func (m *Metrics) AddAssignments(space, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RegionAssignments.WithLabelValues(space, outcome).Add(float64(n))
}

// AddMismatches counts polygons that disagree across spaces.
func (m *Metrics) AddMismatches(n int) {
	if m == nil || n == 0 {
		return
	}
	m.RegionMismatches.Add(float64(n))
}

// AddClusters counts cluster labels found for a prefix group.
func (m *Metrics) AddClusters(prefix string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ClusterLabels.WithLabelValues(prefix).Add(float64(n))
}

// AddDownloaded counts downloaded bytes.
func (m *Metrics) AddDownloaded(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.DownloadedBytes.Add(float64(n))
}

// WriteTextfile writes the registry in the text exposition format. The file is
// written to a temp name and renamed.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return eris.Wrapf(err, "monitoring: write textfile %s", path)
	}
	return nil
}
