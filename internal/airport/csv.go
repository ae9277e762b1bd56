package airport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Headers is the column order of serialized registries.
var Headers = []string{"name", "latitude_deg", "longitude_deg", "gps_code", "iso_country"}

var requiredColumns = []string{"name", "latitude_deg", "longitude_deg", "gps_code"}

// csvRow is the on-disk shape. Coordinates stay text until validated.
type csvRow struct {
	Name      string `csv:"name"`
	Latitude  string `csv:"latitude_deg"`
	Longitude string `csv:"longitude_deg"`
	Code      string `csv:"gps_code"`
	Country   string `csv:"iso_country"`
}

// ParseOptions configures Parse.
type ParseOptions struct {
	// RequireCountry excludes rows with an empty iso_country.
	RequireCountry bool
}

// ParseReport summarizes what Parse kept and why it dropped the rest.
type ParseReport struct {
	Rows               int
	Retained           int
	InvalidCode        int
	MissingCountry     int
	InvalidCoordinates int
	// Malformed counts rows the CSV reader could not split into the header's fields.
	Malformed int
	// Duplicates lists codes seen more than once; the last row won.
	Duplicates []string
}

// ErrEmptyInput is returned by Parse when the input has no header row.
var ErrEmptyInput = eris.New("airport: empty registry input")

// Parse reads a registry CSV. A row is kept iff gps_code is a four-letter ICAO code
// and, when required, iso_country is set. Bad coordinates are reported and skipped.
func Parse(r io.Reader, opts ParseOptions) (*Registry, *ParseReport, error) {
	log := zap.L().With(zap.String("component", "airport.parse"))

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if eris.Is(err, io.EOF) {
			return nil, nil, ErrEmptyInput
		}
		return nil, nil, eris.Wrap(err, "airport: read header")
	}
	if err := checkHeader(dec.Header(), opts); err != nil {
		return nil, nil, err
	}

	reg := NewRegistry()
	report := &ParseReport{}
	seen := make(map[string]int)

	for {
		var row csvRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if malformed(err) {
			report.Rows++
			report.Malformed++
			log.Warn("malformed row, skipping", zap.Int("row", report.Rows), zap.Error(err))
			continue
		} else if err != nil {
			return nil, nil, eris.Wrapf(err, "airport: decode row %d", report.Rows+1)
		}
		report.Rows++

		if !ValidCode(row.Code) {
			report.InvalidCode++
			continue
		}
		if opts.RequireCountry && strings.TrimSpace(row.Country) == "" {
			report.MissingCountry++
			log.Warn("no iso_country, skipping", zap.String("code", row.Code))
			continue
		}

		a, err := row.toAirport()
		if err != nil {
			report.InvalidCoordinates++
			log.Warn("invalid coordinates, skipping", zap.String("code", row.Code), zap.Error(err))
			continue
		}

		seen[a.Code]++
		if seen[a.Code] == 2 {
			report.Duplicates = append(report.Duplicates, a.Code)
		}
		if reg.Put(a) {
			log.Warn("duplicate code, keeping last row", zap.String("code", a.Code), zap.String("name", a.Name))
		}
	}

	report.Retained = reg.Len()
	return reg, report, nil
}

// malformed reports whether err concerns one row's shape rather than the input stream.
func malformed(err error) bool {
	if err == nil {
		return false
	}
	var perr *csv.ParseError
	return errors.As(err, &perr) || errors.Is(err, csvutil.ErrFieldCount)
}

func checkHeader(header []string, opts ParseOptions) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	required := requiredColumns
	if opts.RequireCountry {
		required = append(append([]string{}, requiredColumns...), "iso_country")
	}
	for _, col := range required {
		if !present[col] {
			return eris.Errorf("airport: missing required column %q", col)
		}
	}
	return nil
}

func (row csvRow) toAirport() (Airport, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(row.Latitude), 64)
	if err != nil {
		return Airport{}, eris.Wrapf(err, "latitude %q", row.Latitude)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(row.Longitude), 64)
	if err != nil {
		return Airport{}, eris.Wrapf(err, "longitude %q", row.Longitude)
	}
	a := Airport{
		Name:      CleanName(row.Name),
		Latitude:  lat,
		Longitude: lon,
		Code:      row.Code,
		Country:   strings.TrimSpace(row.Country),
	}
	if !a.Point().Valid() {
		return Airport{}, eris.Errorf("coordinates (%g, %g) out of range", lat, lon)
	}
	return a, nil
}

func fromAirport(a Airport) csvRow {
	return csvRow{
		Name:      a.Name,
		Latitude:  strconv.FormatFloat(a.Latitude, 'f', -1, 64),
		Longitude: strconv.FormatFloat(a.Longitude, 'f', -1, 64),
		Code:      a.Code,
		Country:   a.Country,
	}
}

// Serialize writes airports as CSV in the given order, header first.
func Serialize(w io.Writer, airports []Airport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return eris.Wrap(err, "airport: write header")
	}

	enc := csvutil.NewEncoder(cw)
	enc.AutoHeader = false
	for _, a := range airports {
		if err := enc.Encode(fromAirport(a)); err != nil {
			return eris.Wrapf(err, "airport: encode %s", a.Code)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "airport: flush csv")
	}
	return nil
}

// SerializeString is Serialize into a string without the trailing newline.
func SerializeString(airports []Airport) (string, error) {
	var buf bytes.Buffer
	if err := Serialize(&buf, airports); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
