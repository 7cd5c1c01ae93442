// Package config loads the se2 command line configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/speakeasy"
	"github.com/dd0wney/cluso-speakeasy2/pkg/validation"
)

// ErrConfigFile reports an unreadable or malformed configuration file
var ErrConfigFile = errors.New("invalid config file")

// Supported encodings
var (
	LogFormats    = []string{"json", "console"}
	LogLevels     = []string{"debug", "info", "warn", "warning", "error"}
	ExportFormats = []string{"json", "yaml", "tsv"}
)

// Config is the complete CLI configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Cluster ClusterConfig `yaml:"cluster"`
	Export  ExportConfig  `yaml:"export"`
}

// LoggingConfig selects the log level and encoder
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile written after each command
type MetricsConfig struct {
	File string `yaml:"file"`
}

// ClusterConfig mirrors speakeasy.Options. Unset keys keep the algorithm's
// defaults.
type ClusterConfig struct {
	Weights          string  `yaml:"weights"`
	DiscardTransient *uint   `yaml:"discard_transient,omitempty"`
	IndependentRuns  *uint   `yaml:"independent_runs,omitempty"`
	MaxThreads       *uint   `yaml:"max_threads,omitempty"`
	Seed             *uint64 `yaml:"seed,omitempty"`
	TargetClusters   *uint   `yaml:"target_clusters,omitempty"`
	TargetPartitions *uint   `yaml:"target_partitions,omitempty"`
	Subcluster       *uint   `yaml:"subcluster,omitempty"`
	MinCluster       *uint   `yaml:"min_cluster,omitempty"`
	Verbose          bool    `yaml:"verbose"`
}

// ExportConfig controls where and how results are written
type ExportConfig struct {
	Format   string   `yaml:"format"`
	Compress bool     `yaml:"compress"`
	S3       S3Config `yaml:"s3"`
}

// S3Config enables uploading results to an S3 bucket when Bucket is set
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // custom endpoint, e.g. MinIO

	// Static credentials; the default AWS credential chain is used when empty
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Cluster: ClusterConfig{
			Weights: graph.DefaultWeightAttribute,
		},
		Export: ExportConfig{
			Format: "json",
		},
	}
}

// LoadFile reads a YAML configuration on top of the defaults. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigFile, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrConfigFile, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems found.
func (c *Config) Validate() error {
	return validation.NewChecker().
		OneOf("logging.level", c.Logging.Level, LogLevels...).
		OneOf("logging.format", c.Logging.Format, LogFormats...).
		OneOf("export.format", c.Export.Format, ExportFormats...).
		Check("cluster.weights", validation.ValidateAttributeName(c.Cluster.Weights)).
		If(c.Cluster.MaxThreads != nil && *c.Cluster.MaxThreads != 0, func(v *validation.Checker) {
			v.Check("cluster.max_threads",
				validation.ValidateThreadCount(int(min(*c.Cluster.MaxThreads, uint(validation.MaxThreads+1)))))
		}).
		If(c.Cluster.Subcluster != nil, func(v *validation.Checker) {
			v.Between("cluster.subcluster", int(min(*c.Cluster.Subcluster, 1<<16)), 0, 64)
		}).
		If(c.Export.S3.Bucket != "", func(v *validation.Checker) {
			v.Require("export.s3.region", c.Export.S3.Region)
		}).
		If(c.Export.S3.AccessKeyID != "", func(v *validation.Checker) {
			v.Require("export.s3.secret_access_key", c.Export.S3.SecretAccessKey)
		}).
		Err()
}

// Options converts the cluster section into clustering options
func (c *Config) Options() speakeasy.Options {
	return speakeasy.Options{
		DiscardTransient: c.Cluster.DiscardTransient,
		IndependentRuns:  c.Cluster.IndependentRuns,
		MaxThreads:       c.Cluster.MaxThreads,
		Seed:             c.Cluster.Seed,
		TargetClusters:   c.Cluster.TargetClusters,
		TargetPartitions: c.Cluster.TargetPartitions,
		Subcluster:       c.Cluster.Subcluster,
		MinCluster:       c.Cluster.MinCluster,
		Verbose:          c.Cluster.Verbose,
	}
}

// WeightSpec returns the weight specification named by the cluster section
func (c *Config) WeightSpec() graph.WeightSpec {
	return graph.WeightsByName(c.Cluster.Weights)
}

// LogLevel returns the parsed logging level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// LogFormat returns the logging encoder
func (c *Config) LogFormat() logging.Format {
	if c.Logging.Format == "json" {
		return logging.FormatJSON
	}
	return logging.FormatConsole
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
