package main

import (
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-speakeasy2/pkg/export"
	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/order"
	"github.com/dd0wney/cluso-speakeasy2/pkg/speakeasy"
)

func (a *app) newClusterCommand() *cobra.Command {
	var (
		input      graphFlags
		output     string
		unweighted bool
		withOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "cluster GRAPH",
		Short: "Detect communities in a graph",
		Long: `Detect communities with SpeakEasy2 label propagation.

GRAPH is a tab separated edge list (or an adjacency matrix with --matrix);
"-" reads standard input. The result is written to stdout, or to a file in
the --output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := input.read(cmd, args[0])
			if err != nil {
				return err
			}

			weights := a.cfg.WeightSpec()
			if unweighted {
				weights = graph.NoWeights()
			}
			g, err := graph.Resolve(in, weights)
			if err != nil {
				return err
			}

			clusterer := speakeasy.NewClusterer(speakeasy.ClustererConfig{Logger: a.logger, Metrics: a.metrics})
			res, err := clusterer.ClusterGraph(cmd.Context(), g, a.cfg.Options())
			if err != nil {
				return err
			}
			a.logger.Info("clustered graph",
				logging.OperationID(res.OperationID),
				logging.Nodes(g.N),
				logging.Int("communities", res.Membership().Count()),
				logging.Int("levels", len(res.Levels)),
				logging.Seed(res.Seed),
			)

			doc := export.FromResult(res)
			if withOrder {
				orders, err := order.Nodes(g, res.Levels)
				if err != nil {
					return err
				}
				doc.Orderings = orders
			}
			return a.deliver(cmd, output, doc)
		},
	}

	input.register(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "", "directory to write the result into")
	flags.BoolVar(&unweighted, "unweighted", false, "ignore edge weights")
	flags.BoolVar(&withOrder, "order", false, "include node orderings in the result")

	flags.String("weights", "", "edge attribute holding the weights")
	flags.Uint("discard-transient", 0, "candidate partitions discarded at the start of each run")
	flags.Uint("independent-runs", 0, "independent runs combined into the consensus")
	flags.Uint("max-threads", 0, "worker threads (0 uses every CPU)")
	flags.Uint64("seed", 0, "random seed (random when unset)")
	flags.Uint("target-clusters", 0, "initial label count")
	flags.Uint("target-partitions", 0, "partitions harvested per run")
	flags.Uint("subcluster", 0, "number of hierarchy levels")
	flags.Uint("min-cluster", 0, "smallest community that is subclustered")
	flags.BoolP("verbose", "v", false, "log clustering progress")
	flags.String("format", "", "output format (json, yaml, tsv)")
	flags.Bool("compress", false, "snappy-compress the result")

	for key, name := range map[string]string{
		"cluster.weights":           "weights",
		"cluster.discard_transient": "discard-transient",
		"cluster.independent_runs":  "independent-runs",
		"cluster.max_threads":       "max-threads",
		"cluster.seed":              "seed",
		"cluster.target_clusters":   "target-clusters",
		"cluster.target_partitions": "target-partitions",
		"cluster.subcluster":        "subcluster",
		"cluster.min_cluster":       "min-cluster",
		"cluster.verbose":           "verbose",
		"export.format":             "format",
		"export.compress":           "compress",
	} {
		a.bind(key, flags.Lookup(name))
	}
	return cmd
}
