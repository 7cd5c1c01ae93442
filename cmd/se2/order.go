package main

import (
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-speakeasy2/pkg/export"
	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/order"
)

func (a *app) newOrderCommand() *cobra.Command {
	var (
		input   graphFlags
		output  string
		weights string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "order GRAPH MEMBERSHIP",
		Short: "Order nodes so communities form contiguous blocks",
		Long: `Order nodes by community for heatmap display.

MEMBERSHIP is a membership table as written by "se2 cluster --format tsv".
One ordering is produced per membership level.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := input.read(cmd, args[0])
			if err != nil {
				return err
			}
			spec := a.cfg.WeightSpec()
			if weights != "" {
				spec = graph.WeightsByName(weights)
			}
			g, err := graph.Resolve(in, spec)
			if err != nil {
				return err
			}

			h, err := readHierarchy(cmd, args[1])
			if err != nil {
				return err
			}
			orders, err := order.Nodes(g, h)
			if err != nil {
				return err
			}

			if format != "" {
				a.cfg.Export.Format = format
			}
			return a.deliver(cmd, output, export.FromOrderings(orders, h))
		},
	}

	input.register(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "directory to write the result into")
	flags.StringVar(&weights, "weights", "", "edge attribute holding the weights")
	flags.StringVar(&format, "format", "", "output format (json, yaml, tsv)")
	return cmd
}
