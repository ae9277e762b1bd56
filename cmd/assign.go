package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/icao-airports/internal/airport"
	"github.com/sells-group/icao-airports/internal/geo"
	"github.com/sells-group/icao-airports/internal/monitoring"
	"github.com/sells-group/icao-airports/internal/region"
)

var assignCmd = &cobra.Command{
	Use:     "assign",
	Aliases: []string{"airports_per_polygon"},
	Short:   "Assign curated airports to border polygons",
	Long: "Tests every curated airport against the split border polygons in file order. The " +
		"first polygon containing an airport claims it. Writes the polygons annotated with " +
		"their airport codes.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("regions"); err != nil {
			return err
		}
		spaceName, _ := cmd.Flags().GetString("space")
		if spaceName == "" {
			spaceName = cfg.Regions.Space
		}
		space, err := geo.ParseSpace(spaceName)
		if err != nil {
			return err
		}
		in, _ := cmd.Flags().GetString("in")
		if in == "" {
			in = cfg.Regions.SplitOutput
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Regions.AssignedOutput
			if space == geo.SpaceRaw {
				out = cfg.Regions.RawOutput
			}
		}

		fc, err := region.LoadGeoJSON(in)
		if err != nil {
			return err
		}
		regions, err := region.Regions(fc)
		if err != nil {
			return err
		}
		reg, err := newPipeline().Curated(cfg.Source.Path)
		if err != nil {
			return err
		}
		total := reg.Len()

		a, err := assignIn(space, regions, reg)
		if err != nil {
			return err
		}
		annotated, err := region.Annotate(fc, a, cfg.Regions.Property)
		if err != nil {
			return err
		}
		if err := region.SaveGeoJSON(out, annotated); err != nil {
			return err
		}

		fmt.Printf("Assigned %d of %d airports to %d polygons (%s space) in %s\n",
			a.Assigned(), total, len(regions), space, out)
		if len(a.Unassigned) > 0 {
			fmt.Printf("%d remaining airports: %s\n", len(a.Unassigned), strings.Join(a.Unassigned, " "))
		}
		if len(a.Indeterminate) > 0 {
			fmt.Printf("%d undecidable tests (point not projectable)\n", len(a.Indeterminate))
		}
		return nil
	},
}

// assignIn runs one assignment pass and records its outcome counters.
func assignIn(space geo.Space, regions []region.Region, reg *airport.Registry) (*region.Assignment, error) {
	a, err := region.NewAssigner(space).Assign(regions, reg)
	if err != nil {
		return nil, eris.Wrapf(err, "assign in %s space", space)
	}
	metrics.AddAssignments(space.String(), monitoring.OutcomeAssigned, a.Assigned())
	metrics.AddAssignments(space.String(), monitoring.OutcomeUnassigned, len(a.Unassigned))
	metrics.AddAssignments(space.String(), monitoring.OutcomeIndeterminate, len(a.Indeterminate))
	for _, s := range a.Indeterminate {
		zap.L().Debug("undecidable containment", zap.String("code", s.Code), zap.Int("polygon", s.Region), zap.String("reason", s.Reason))
	}
	return a, nil
}

func init() {
	assignCmd.Flags().String("space", "", "raw or projected (default: regions.space)")
	assignCmd.Flags().String("in", "", "split borders (default: regions.split_output)")
	assignCmd.Flags().String("out", "", "annotated output (default: regions.assigned_output, or regions.raw_output for raw)")
	rootCmd.AddCommand(assignCmd)
}
