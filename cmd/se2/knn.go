package main

import (
	"io"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/dd0wney/cluso-speakeasy2/pkg/ioformat"
	"github.com/dd0wney/cluso-speakeasy2/pkg/knn"
)

func (a *app) newKNNCommand() *cobra.Command {
	var (
		k        int
		weighted bool
		columns  bool
		output   string
		threads  int
	)

	cmd := &cobra.Command{
		Use:   "knn POINTS",
		Short: "Build a k-nearest-neighbor graph",
		Long: `Build the directed k-nearest-neighbor graph of a set of points.

POINTS is a comma separated matrix with one point per row (per column with
--columns). The graph is written as a tab separated edge list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := open(cmd, args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			m, err := ioformat.ReadMatrix(r, 0)
			if err != nil {
				return err
			}
			var cols mat.Matrix = m
			if !columns {
				cols = m.T()
			}

			builder := knn.NewBuilder(knn.BuilderConfig{Workers: threads, Logger: a.logger, Metrics: a.metrics})
			g, err := builder.Build(cols, k, weighted)
			if err != nil {
				return err
			}

			return writeTo(cmd, output, func(w io.Writer) error {
				return ioformat.WriteEdgeList(w, g)
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&k, "neighbors", "k", 10, "neighbors per point")
	flags.BoolVar(&weighted, "weighted", false, "weight edges by inverse distance")
	flags.BoolVar(&columns, "columns", false, "points are the matrix columns")
	flags.StringVarP(&output, "output", "o", "", "edge list file (stdout when empty)")
	flags.IntVar(&threads, "threads", 0, "worker threads (0 uses every CPU)")
	return cmd
}
