package main

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/icao-airports/internal/airport"
	"github.com/sells-group/icao-airports/internal/config"
	"github.com/sells-group/icao-airports/internal/curate"
	"github.com/sells-group/icao-airports/internal/monitoring"
	"github.com/sells-group/icao-airports/internal/outlier"
)

var (
	cfg     *config.Config
	metrics *monitoring.Metrics
	runID   string
)

var rootCmd = &cobra.Command{
	Use:   "icao-airports",
	Short: "Curate the ICAO airport registry and map it onto country borders",
	Long: "Downloads the OurAirports registry, keeps airports with a four-letter ICAO code, " +
		"rejects geographic outliers per code prefix, generates the embedded CSV module and " +
		"assigns airports to country polygons.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		runID = uuid.NewString()
		zap.ReplaceGlobals(zap.L().With(zap.String("run_id", runID), zap.String("command", cmd.Name())))

		m, err := monitoring.NewMetrics()
		if err != nil {
			return eris.Wrap(err, "init metrics")
		}
		metrics = m
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logRunSummary(metrics)
		if cfg != nil && cfg.Metrics.Textfile != "" {
			if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				zap.L().Warn("metrics textfile not written", zap.Error(err))
			}
		}
		_ = zap.L().Sync()
	},
}

// logRunSummary logs the counters collected during the run.
func logRunSummary(m *monitoring.Metrics) *monitoring.Snapshot {
	snap, err := m.Collect()
	if err != nil {
		zap.L().Warn("run summary not collected", zap.Error(err))
		return nil
	}
	zap.L().Info("run summary",
		zap.Any("parsed", snap.Parsed),
		zap.Int("outliers", snap.Outliers),
		zap.Int("assigned", snap.Assigned),
		zap.Int("unassigned", snap.Unassigned),
		zap.Int("indeterminate", snap.Indeterminate),
		zap.Int("mismatches", snap.Mismatches),
		zap.Int("clusters", snap.Clusters),
		zap.Int64("downloaded_bytes", snap.Downloaded),
	)
	return snap
}

// newPipeline builds the curation pipeline from the loaded config.
func newPipeline() *curate.Pipeline {
	return curate.New(
		airport.ParseOptions{RequireCountry: cfg.Source.RequireCountry},
		outlier.NewDetector(cfg.Filter.OutlierThresholdKM),
		metrics,
	)
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
