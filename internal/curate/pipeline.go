// Package curate wires parsing, outlier rejection and serialization into the batch
// flow shared by the CLI commands.
package curate

import (
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/icao-airports/internal/airport"
	"github.com/sells-group/icao-airports/internal/monitoring"
	"github.com/sells-group/icao-airports/internal/outlier"
)

// Pipeline holds the settings of one curation run.
type Pipeline struct {
	Parse    airport.ParseOptions
	Detector *outlier.Detector
	Metrics  *monitoring.Metrics

	log *zap.Logger
}

// New creates a Pipeline. A nil detector uses the default threshold; metrics may be nil.
func New(opts airport.ParseOptions, detector *outlier.Detector, metrics *monitoring.Metrics) *Pipeline {
	if detector == nil {
		detector = outlier.NewDetector(outlier.DefaultThresholdKM)
	}
	return &Pipeline{
		Parse:    opts,
		Detector: detector,
		Metrics:  metrics,
		log:      zap.L().With(zap.String("component", "curate")),
	}
}

// Summary describes one Filter run.
type Summary struct {
	// Registry is the pruned registry that was written.
	Registry *airport.Registry
	Report   *airport.ParseReport
	Outliers []outlier.Finding
	Retained int
	Took     time.Duration
}

// Load parses a registry and records the parse outcomes.
func (p *Pipeline) Load(r io.Reader) (*airport.Registry, *airport.ParseReport, error) {
	reg, report, err := airport.Parse(r, p.Parse)
	if err != nil {
		return nil, nil, err
	}

	p.Metrics.AddParsed(monitoring.OutcomeRetained, report.Retained)
	p.Metrics.AddParsed(monitoring.OutcomeInvalidCode, report.InvalidCode)
	p.Metrics.AddParsed(monitoring.OutcomeNoCountry, report.MissingCountry)
	p.Metrics.AddParsed(monitoring.OutcomeBadCoordinate, report.InvalidCoordinates)
	p.Metrics.AddParsed(monitoring.OutcomeDuplicate, len(report.Duplicates))
	p.Metrics.AddParsed(monitoring.OutcomeMalformed, report.Malformed)

	p.log.Info("registry parsed",
		zap.Int("rows", report.Rows),
		zap.Int("retained", report.Retained),
		zap.Int("invalid_code", report.InvalidCode),
		zap.Int("missing_country", report.MissingCountry),
		zap.Int("invalid_coordinates", report.InvalidCoordinates),
		zap.Int("malformed", report.Malformed),
		zap.Strings("duplicates", report.Duplicates),
	)
	return reg, report, nil
}

// LoadFile is Load on a file path.
func (p *Pipeline) LoadFile(path string) (*airport.Registry, *airport.ParseReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "curate: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reg, report, err := p.Load(f)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "curate: load %s", path)
	}
	return reg, report, nil
}

// Prune detects outliers over the whole registry and only then deletes them.
func (p *Pipeline) Prune(reg *airport.Registry) []outlier.Finding {
	findings := p.Detector.Detect(reg)
	removed := outlier.Prune(reg, findings)
	for _, f := range findings {
		p.Metrics.IncOutlier(f.Airport.Prefix(1))
	}
	p.log.Info("outliers pruned",
		zap.Int("removed", removed),
		zap.Float64("threshold_km", p.Detector.ThresholdKM()),
		zap.Int("remaining", reg.Len()),
	)
	return findings
}

// Curated loads path and prunes it: the registry every downstream step works on.
func (p *Pipeline) Curated(path string) (*airport.Registry, error) {
	reg, _, err := p.LoadFile(path)
	if err != nil {
		return nil, err
	}
	p.Prune(reg)
	return reg, nil
}

// Filter parses r, prunes outliers and writes the retained airports to w ordered by
// code. Running Filter on its own output reproduces it.
func (p *Pipeline) Filter(r io.Reader, w io.Writer) (*Summary, error) {
	start := time.Now()

	reg, report, err := p.Load(r)
	if err != nil {
		return nil, err
	}
	findings := p.Prune(reg)

	if err := airport.Serialize(w, reg.Airports()); err != nil {
		return nil, eris.Wrap(err, "curate: serialize")
	}
	return &Summary{
		Registry: reg,
		Report:   report,
		Outliers: findings,
		Retained: reg.Len(),
		Took:     time.Since(start),
	}, nil
}

// TypeScript renders reg as the generated source module embedding the CSV.
func TypeScript(reg *airport.Registry) (string, error) {
	text, err := airport.SerializeString(reg.Airports())
	if err != nil {
		return "", eris.Wrap(err, "curate: serialize")
	}
	return airport.RenderTypeScript(text)
}
