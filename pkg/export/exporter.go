package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/metrics"
)

// ErrNoSinks is returned when an exporter has nowhere to deliver to
var ErrNoSinks = errors.New("no export sinks configured")

// ExporterConfig configures an Exporter
type ExporterConfig struct {
	Format   Format
	Compress bool
	Sinks    []Sink
	Logger   logging.Logger
	Metrics  *metrics.Registry // nil disables metrics
}

// DefaultExporterConfig encodes uncompressed JSON
func DefaultExporterConfig() ExporterConfig {
	return ExporterConfig{
		Format:  FormatJSON,
		Logger:  logging.DefaultLogger(),
		Metrics: metrics.DefaultRegistry(),
	}
}

// Exporter encodes documents once and delivers them to every sink
type Exporter struct {
	config ExporterConfig
	logger logging.Logger
}

// NewExporter creates an exporter
func NewExporter(config ExporterConfig) (*Exporter, error) {
	if _, err := ParseFormat(string(config.Format)); err != nil {
		return nil, err
	}
	if len(config.Sinks) == 0 {
		return nil, ErrNoSinks
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Exporter{config: config, logger: logger.With(logging.Component("export"))}, nil
}

// ArtifactName is the name a document is stored under
func (e *Exporter) ArtifactName(doc *Document) string {
	name := doc.Kind + "-" + doc.ID + e.config.Format.Ext()
	if e.config.Compress {
		name += SnappyExt
	}
	return name
}

// Export encodes doc and stores it in every sink, returning the locations
// written. Delivery stops at the first failing sink.
func (e *Exporter) Export(ctx context.Context, doc *Document) ([]string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, e.config.Format); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", e.config.Format, err)
	}
	data := buf.Bytes()
	if e.config.Compress {
		compressed, err := Compress(data)
		if err != nil {
			return nil, fmt.Errorf("failed to compress: %w", err)
		}
		data = compressed
	}

	name := e.ArtifactName(doc)
	locations := make([]string, 0, len(e.config.Sinks))
	for _, sink := range e.config.Sinks {
		start := time.Now()
		location, err := sink.Put(ctx, name, data)
		if e.config.Metrics != nil {
			e.config.Metrics.RecordExport(string(e.config.Format), sink.Name(), metrics.StatusOf(err),
				int64(len(data)), time.Since(start))
		}
		if err != nil {
			e.logger.Error("export failed", logging.String("sink", sink.Name()), logging.Error(err))
			return locations, err
		}
		e.logger.Debug("exported result",
			logging.String("sink", sink.Name()),
			logging.String("location", location),
			logging.Int("bytes", len(data)),
			logging.Latency(time.Since(start)),
		)
		locations = append(locations, location)
	}
	return locations, nil
}
