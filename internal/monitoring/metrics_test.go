package monitoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.AddParsed(OutcomeRetained, 3)
	m.AddParsed(OutcomeInvalidCode, 2)
	m.AddParsed(OutcomeDuplicate, 0)
	m.IncOutlier("P")
	m.IncOutlier("P")
	m.AddAssignments("projected", OutcomeAssigned, 5)
	m.AddAssignments("projected", OutcomeIndeterminate, 1)
	m.AddMismatches(2)
	m.AddClusters("L", 4)
	m.AddDownloaded(1024)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.AirportsParsed.WithLabelValues(OutcomeRetained)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Outliers.WithLabelValues("P")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RegionAssignments.WithLabelValues("projected", OutcomeAssigned)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegionMismatches))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ClusterLabels.WithLabelValues("L")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.DownloadedBytes))
}

func TestMetrics_Collect(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.AddParsed(OutcomeRetained, 10)
	m.AddParsed(OutcomeNoCountry, 1)
	m.IncOutlier("P")
	m.IncOutlier("K")
	m.AddAssignments("raw", OutcomeAssigned, 7)
	m.AddAssignments("projected", OutcomeAssigned, 6)
	m.AddAssignments("projected", OutcomeUnassigned, 1)
	m.AddAssignments("projected", OutcomeIndeterminate, 1)
	m.AddMismatches(1)

	snap, err := m.Collect()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{OutcomeRetained: 10, OutcomeNoCountry: 1}, snap.Parsed)
	assert.Equal(t, 2, snap.Outliers)
	assert.Equal(t, 13, snap.Assigned)
	assert.Equal(t, 1, snap.Unassigned)
	assert.Equal(t, 1, snap.Indeterminate)
	assert.Equal(t, 1, snap.Mismatches)
	assert.False(t, snap.CollectedAt.IsZero())
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AddParsed(OutcomeRetained, 1)
		m.IncOutlier("P")
		m.AddAssignments("raw", OutcomeAssigned, 1)
		m.AddMismatches(1)
		m.AddClusters("L", 1)
		m.AddDownloaded(1)
	})
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))

	snap, err := m.Collect()
	require.NoError(t, err)
	assert.Empty(t, snap.Parsed)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	m.AddParsed(OutcomeRetained, 42)

	path := filepath.Join(t.TempDir(), "icao.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `airports_parsed_total{outcome="retained"} 42`)
}
