package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/icao-airports/internal/crosscheck"
)

var crossCheckCmd = &cobra.Command{
	Use:     "cross-check",
	Aliases: []string{"exp_cross_check_easa"},
	Short:   "Verify every EASA aerodrome is in the registry",
	Long:    "Reads the EASA aerodrome list (JSON, data[].\"ICAO airport code\") and prints the codes missing from the parsed registry.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("easa"); err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("easa")
		if path == "" {
			path = cfg.EASA.Path
		}

		reg, _, err := newPipeline().LoadFile(cfg.Source.Path)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return eris.Wrapf(err, "cross-check: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		missing, err := crosscheck.MissingFromRegistry(f, reg)
		if err != nil {
			return eris.Wrap(err, "cross-check")
		}
		for _, code := range missing {
			fmt.Printf("%s not in airports\n", code)
		}
		if len(missing) == 0 {
			fmt.Println("All EASA airports in db")
		}
		return nil
	},
}

func init() {
	crossCheckCmd.Flags().String("easa", "", "EASA aerodrome list (default: easa.path)")
	rootCmd.AddCommand(crossCheckCmd)
}
