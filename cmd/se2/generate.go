package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/ioformat"
	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

func (a *app) newGenerateCommand() *cobra.Command {
	var (
		opts      graph.PlantedOptions
		graphPath string
		truthPath string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a planted-partition benchmark graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, truth, err := graph.PlantedPartition(opts)
			if err != nil {
				return err
			}

			if err := writeTo(cmd, graphPath, func(w io.Writer) error {
				return ioformat.WriteEdgeList(w, g)
			}); err != nil {
				return err
			}
			if truthPath != "" {
				if err := writeTo(cmd, truthPath, func(w io.Writer) error {
					return ioformat.WriteHierarchy(w, partition.Hierarchy{truth})
				}); err != nil {
					return err
				}
			}

			a.logger.Info("generated graph", logging.Nodes(g.N), logging.Edges(g.EdgeCount()),
				logging.Int("groups", opts.Groups), logging.Seed(opts.Seed))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Nodes, "nodes", 100, "number of nodes")
	flags.IntVar(&opts.Groups, "groups", 5, "number of planted communities")
	flags.Float64Var(&opts.PIn, "p-in", 0.6, "edge probability inside a community")
	flags.Float64Var(&opts.POut, "p-out", 0.02, "edge probability between communities")
	flags.BoolVar(&opts.Weighted, "weighted", false, "draw random edge weights")
	flags.Uint64Var(&opts.Seed, "seed", 1, "random seed")
	flags.StringVar(&graphPath, "graph", "", "edge list file (stdout when empty)")
	flags.StringVar(&truthPath, "truth", "", "ground truth membership file")
	return cmd
}

// writeTo calls fn with the named file, or stdout when path is empty.
func writeTo(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
