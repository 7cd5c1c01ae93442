package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

func (a *app) newCompareCommand() *cobra.Command {
	var (
		input     graphFlags
		graphPath string
	)

	cmd := &cobra.Command{
		Use:   "compare MEMBERSHIP REFERENCE",
		Short: "Compare two memberships level by level",
		Long: `Report the normalized mutual information between two membership
tables for every level they share. With --graph, also report community
counts, cut edges and modularity of MEMBERSHIP on that graph.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			got, err := readHierarchy(cmd, args[0])
			if err != nil {
				return err
			}
			want, err := readHierarchy(cmd, args[1])
			if err != nil {
				return err
			}

			var g *graph.Graph
			if graphPath != "" {
				in, err := input.read(cmd, graphPath)
				if err != nil {
					return err
				}
				if g, err = graph.Resolve(in, a.cfg.WeightSpec()); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			header := "level\tnmi"
			if g != nil {
				header += "\tcommunities\tcut_edges\tmodularity"
			}
			fmt.Fprintln(tw, header)

			for lvl := 0; lvl < min(len(got), len(want)); lvl++ {
				nmi, err := partition.NMI(got[lvl], want[lvl])
				if err != nil {
					return fmt.Errorf("level %d: %w", lvl, err)
				}
				if g == nil {
					fmt.Fprintf(tw, "%d\t%.4f\n", lvl, nmi)
					continue
				}
				m, err := partition.ComputeMetrics(g, got[lvl])
				if err != nil {
					return fmt.Errorf("level %d: %w", lvl, err)
				}
				fmt.Fprintf(tw, "%d\t%.4f\t%d\t%d\t%.4f\n", lvl, nmi, m.Communities, m.CutEdges, m.Modularity)
			}
			return tw.Flush()
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&graphPath, "graph", "", "graph to compute quality metrics on")
	return cmd
}
