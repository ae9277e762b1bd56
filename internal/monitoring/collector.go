package monitoring

import (
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/rotisserie/eris"
)

// Snapshot is a point-in-time view of the run counters.
type Snapshot struct {
	Parsed        map[string]int `json:"parsed"`
	Outliers      int            `json:"outliers"`
	Assigned      int            `json:"assigned"`
	Unassigned    int            `json:"unassigned"`
	Indeterminate int            `json:"indeterminate"`
	Mismatches    int            `json:"mismatches"`
	Clusters      int            `json:"clusters"`
	Downloaded    int64          `json:"downloaded_bytes"`
	CollectedAt   time.Time      `json:"collected_at"`
}

// Collect gathers the registry into a Snapshot, summing label dimensions other
// than the parse outcome.
func (m *Metrics) Collect() (*Snapshot, error) {
	snap := &Snapshot{
		Parsed:      make(map[string]int),
		CollectedAt: time.Now().UTC(),
	}
	if m == nil {
		return snap, nil
	}

	families, err := m.registry.Gather()
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: gather")
	}

	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			v := int(metric.GetCounter().GetValue())
			switch mf.GetName() {
			case "airports_parsed_total":
				snap.Parsed[label(metric, "outcome")] += v
			case "airport_outliers_total":
				snap.Outliers += v
			case "region_assignments_total":
				switch label(metric, "outcome") {
				case OutcomeAssigned:
					snap.Assigned += v
				case OutcomeUnassigned:
					snap.Unassigned += v
				case OutcomeIndeterminate:
					snap.Indeterminate += v
				}
			case "region_mismatches_total":
				snap.Mismatches += v
			case "cluster_labels_total":
				snap.Clusters += v
			case "source_downloaded_bytes_total":
				snap.Downloaded += int64(metric.GetCounter().GetValue())
			}
		}
	}
	return snap, nil
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
