package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/icao-airports/internal/geo"
	"github.com/sells-group/icao-airports/internal/region"
)

var compareCmd = &cobra.Command{
	Use:     "compare",
	Aliases: []string{"exp_mercator_vs_not"},
	Short:   "Compare raw and projected polygon assignments",
	Long: "Assigns the curated airports twice, in raw lon/lat and in Mercator space, and prints " +
		"every polygon whose code sets differ. With --files, compares two annotated files " +
		"instead. Differences are expected near the poles and are not an error.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		files, _ := cmd.Flags().GetStringSlice("files")

		var (
			mismatches []region.Mismatch
			names      = [2]string{geo.SpaceRaw.String(), geo.SpaceProjected.String()}
			err        error
		)
		switch len(files) {
		case 0:
			mismatches, err = compareSpaces()
		case 2:
			names = [2]string{files[0], files[1]}
			mismatches, err = compareFiles(files[0], files[1])
		default:
			return eris.Errorf("compare: --files takes exactly two paths, got %d", len(files))
		}
		if err != nil {
			return err
		}

		metrics.AddMismatches(len(mismatches))
		for _, m := range mismatches {
			fmt.Println("---")
			fmt.Printf("polygon %d\n", m.Index)
			fmt.Printf("  only in %s: %s\n", names[0], strings.Join(m.OnlyInFirst, " "))
			fmt.Printf("  only in %s: %s\n", names[1], strings.Join(m.OnlyInSecond, " "))
		}
		fmt.Printf("%d polygons differ\n", len(mismatches))
		return nil
	},
}

func compareSpaces() ([]region.Mismatch, error) {
	fc, err := region.LoadGeoJSON(cfg.Regions.SplitOutput)
	if err != nil {
		return nil, err
	}
	regions, err := region.Regions(fc)
	if err != nil {
		return nil, err
	}
	reg, err := newPipeline().Curated(cfg.Source.Path)
	if err != nil {
		return nil, err
	}

	raw, err := assignIn(geo.SpaceRaw, regions, reg.Clone())
	if err != nil {
		return nil, err
	}
	projected, err := assignIn(geo.SpaceProjected, regions, reg)
	if err != nil {
		return nil, err
	}
	return region.Compare(raw.Codes, projected.Codes)
}

func compareFiles(a, b string) ([]region.Mismatch, error) {
	fa, err := region.LoadGeoJSON(a)
	if err != nil {
		return nil, err
	}
	fb, err := region.LoadGeoJSON(b)
	if err != nil {
		return nil, err
	}
	return region.CompareCollections(fa, fb, cfg.Regions.Property)
}

func init() {
	compareCmd.Flags().StringSlice("files", nil, "two annotated files to compare, e.g. --files a.geo.json,b.geo.json")
	rootCmd.AddCommand(compareCmd)
}
