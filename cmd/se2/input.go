package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-speakeasy2/pkg/export"
	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/ioformat"
	"github.com/dd0wney/cluso-speakeasy2/pkg/partition"
)

// graphFlags select how a graph file is parsed
type graphFlags struct {
	matrix   bool
	directed bool
	nodes    int
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.matrix, "matrix", false, "input is a comma separated adjacency matrix instead of an edge list")
	cmd.Flags().BoolVar(&f.directed, "directed", false, "treat the edge list as directed")
	cmd.Flags().IntVar(&f.nodes, "nodes", 0, "minimum node count for edge lists with trailing isolated nodes")
}

// open returns the named file, or stdin for "-"
func open(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

func (f *graphFlags) read(cmd *cobra.Command, path string) (graph.Input, error) {
	r, err := open(cmd, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if f.matrix {
		m, err := ioformat.ReadMatrix(r, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return graph.DenseInput{Matrix: m}, nil
	}
	in, err := ioformat.ReadEdgeList(r, ioformat.EdgeListOptions{Directed: f.directed, Nodes: f.nodes})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

func readHierarchy(cmd *cobra.Command, path string) (partition.Hierarchy, error) {
	r, err := open(cmd, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	h, err := ioformat.ReadHierarchy(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// exporter builds the result exporter: a directory sink when output is set,
// stdout otherwise, plus S3 when a bucket is configured.
func (a *app) exporter(ctx context.Context, cmd *cobra.Command, output string) (*export.Exporter, error) {
	format, err := export.ParseFormat(a.cfg.Export.Format)
	if err != nil {
		return nil, err
	}

	var sinks []export.Sink
	if output != "" {
		sinks = append(sinks, &export.FileSink{Dir: output})
	} else {
		sinks = append(sinks, &export.WriterSink{W: cmd.OutOrStdout()})
	}

	if s3cfg := a.cfg.Export.S3; s3cfg.Bucket != "" {
		client, err := export.NewS3Client(ctx, export.S3Options{
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, &export.S3Sink{Client: client, Bucket: s3cfg.Bucket, Prefix: s3cfg.Prefix})
	}

	return export.NewExporter(export.ExporterConfig{
		Format:   format,
		Compress: a.cfg.Export.Compress,
		Sinks:    sinks,
		Logger:   a.logger,
		Metrics:  a.metrics,
	})
}

func (a *app) deliver(cmd *cobra.Command, output string, doc *export.Document) error {
	exp, err := a.exporter(cmd.Context(), cmd, output)
	if err != nil {
		return err
	}
	locations, err := exp.Export(cmd.Context(), doc)
	if err != nil {
		return err
	}
	if output != "" {
		for _, loc := range locations {
			fmt.Fprintln(cmd.OutOrStdout(), loc)
		}
	}
	return nil
}
