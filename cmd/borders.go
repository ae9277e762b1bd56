package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/icao-airports/internal/region"
)

var bordersCmd = &cobra.Command{
	Use:   "borders",
	Short: "Merge annotated polygons by airport code prefix",
	Long: "Drops polygons without airports and merges the rest into one MultiPolygon per code " +
		"prefix, choosing for each polygon the prefix most common among its airports.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("regions"); err != nil {
			return err
		}
		in, _ := cmd.Flags().GetString("in")
		if in == "" {
			in = cfg.Regions.AssignedOutput
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Regions.MergedOutput
		}
		prefixLen, _ := cmd.Flags().GetInt("prefix-len")
		if prefixLen == 0 {
			prefixLen = cfg.Regions.PrefixLen
		}

		fc, err := region.LoadGeoJSON(in)
		if err != nil {
			return err
		}
		merged, err := region.MergeByPrefix(fc, cfg.Regions.Property, prefixLen)
		if err != nil {
			return err
		}
		if err := region.SaveGeoJSON(out, merged); err != nil {
			return err
		}

		fmt.Printf("Merged %d polygons into %d prefix regions in %s\n", len(fc.Features), len(merged.Features), out)
		return nil
	},
}

func init() {
	bordersCmd.Flags().String("in", "", "annotated polygons (default: regions.assigned_output)")
	bordersCmd.Flags().String("out", "", "merged output (default: regions.merged_output)")
	bordersCmd.Flags().Int("prefix-len", 0, "code prefix length (default: regions.prefix_len)")
	rootCmd.AddCommand(bordersCmd)
}
