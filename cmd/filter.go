package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/icao-airports/internal/curate"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep ICAO airports, drop outliers and generate the CSV module",
	Long: "Parses the registry, keeps rows with a four-letter gps_code and a country, rejects " +
		"airports farther than filter.outlier_threshold_km from every other airport sharing " +
		"their first code letter, and writes the result as a generated TypeScript module.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("filter"); err != nil {
			return err
		}
		in, _ := cmd.Flags().GetString("in")
		if in == "" {
			in = cfg.Source.Path
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Filter.Output
		}
		csvOut, _ := cmd.Flags().GetString("csv-out")

		f, err := os.Open(in)
		if err != nil {
			return eris.Wrapf(err, "filter: open %s", in)
		}
		defer f.Close() //nolint:errcheck

		var buf bytes.Buffer
		sum, err := newPipeline().Filter(f, &buf)
		if err != nil {
			return eris.Wrap(err, "filter")
		}

		for _, o := range sum.Outliers {
			fmt.Printf("%s: removing outlier %s:%s (nearest %s, %.0f km)\n",
				o.Airport.Prefix(1), o.Airport.Code, o.Airport.Name, o.Nearest.Code, o.Nearest.DistanceKM)
		}

		ts, err := curate.TypeScript(sum.Registry)
		if err != nil {
			return eris.Wrap(err, "filter: render module")
		}
		if err := writeOutput(out, []byte(ts)); err != nil {
			return err
		}
		if csvOut != "" {
			if err := writeOutput(csvOut, buf.Bytes()); err != nil {
				return err
			}
		}

		fmt.Printf("Kept %s of %s rows (%d outliers, %d duplicates, %d malformed) in %s\n",
			humanize.Comma(int64(sum.Retained)),
			humanize.Comma(int64(sum.Report.Rows)),
			len(sum.Outliers),
			len(sum.Report.Duplicates),
			sum.Report.Malformed,
			out,
		)
		return nil
	},
}

func init() {
	filterCmd.Flags().String("in", "", "registry CSV (default: source.path)")
	filterCmd.Flags().String("out", "", "generated module path (default: filter.output)")
	filterCmd.Flags().String("csv-out", "", "also write the filtered CSV to this path")
	rootCmd.AddCommand(filterCmd)
}
