package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/icao-airports/internal/region"
)

var splitCmd = &cobra.Command{
	Use:     "split-polygons",
	Aliases: []string{"split_polygon"},
	Short:   "Split multipolygon borders into one feature per polygon",
	Long:    "Reads a GeoJSON FeatureCollection (or an ESRI .shp) and writes one Polygon feature per part, copying properties.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in, _ := cmd.Flags().GetString("in")
		if in == "" {
			in = cfg.Regions.Input
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Regions.SplitOutput
		}

		fc, err := loadBorders(in)
		if err != nil {
			return err
		}
		split, err := region.SplitMultiPolygons(fc)
		if err != nil {
			return eris.Wrap(err, "split polygons")
		}
		if err := region.SaveGeoJSON(out, split); err != nil {
			return err
		}

		fmt.Printf("Split %d features into %d polygons in %s\n", len(fc.Features), len(split.Features), out)
		return nil
	},
}

// loadBorders reads GeoJSON, or a shapefile when path ends in .shp.
func loadBorders(path string) (*geojson.FeatureCollection, error) {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		return region.LoadShapefile(path)
	}
	return region.LoadGeoJSON(path)
}

func init() {
	splitCmd.Flags().String("in", "", "borders file, .geo.json or .shp (default: regions.input)")
	splitCmd.Flags().String("out", "", "output path (default: regions.split_output)")
	rootCmd.AddCommand(splitCmd)
}
