package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/icao-airports/internal/cluster"
)

var clusterCmd = &cobra.Command{
	Use:     "cluster",
	Aliases: []string{"exp_cluster"},
	Short:   "Report density clusters per code prefix",
	Long: "Projects each prefix group of the curated registry to Mercator kilometers and runs " +
		"OPTICS with cluster.max_eps_km and cluster.min_samples. Prints the airport count per " +
		"label; label -1 is noise. Read-only.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("cluster"); err != nil {
			return err
		}
		prefixes, _ := cmd.Flags().GetStringSlice("prefix")
		if len(prefixes) == 0 {
			prefixes = cfg.Cluster.Prefixes
		}

		reg, err := newPipeline().Curated(cfg.Source.Path)
		if err != nil {
			return err
		}
		opts := cluster.Options{MaxEpsKM: cfg.Cluster.MaxEpsKM, MinSamples: cfg.Cluster.MinSamples}

		for _, prefix := range prefixes {
			prefix = strings.ToUpper(strings.TrimSpace(prefix))
			if prefix == "" {
				continue
			}
			group := reg.GroupByPrefix(len(prefix))[prefix]
			if len(group) == 0 {
				fmt.Printf("%s: no airports\n", prefix)
				continue
			}

			res, err := cluster.Run(group, opts)
			if err != nil {
				return eris.Wrapf(err, "cluster %s", prefix)
			}
			metrics.AddClusters(prefix, res.Clusters())

			counts := res.Counts()
			fmt.Printf("%s: %d airports, %d clusters\n", prefix, len(group), res.Clusters())
			parts := make([]string, 0, len(counts))
			for _, l := range res.LabelsSorted() {
				parts = append(parts, fmt.Sprintf("%d:%d", l, counts[l]))
			}
			fmt.Printf("cluster repartition {%s}\n", strings.Join(parts, ", "))
			if noise := res.Members(cluster.Noise); len(noise) > 0 {
				fmt.Printf("noise: %s\n", strings.Join(noise, " "))
			}
		}
		return nil
	},
}

func init() {
	clusterCmd.Flags().StringSlice("prefix", nil, "code prefixes to cluster (default: cluster.prefixes)")
	rootCmd.AddCommand(clusterCmd)
}
