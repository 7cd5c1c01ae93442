package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-speakeasy2/pkg/graph"
	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/speakeasy"
	"github.com/dd0wney/cluso-speakeasy2/pkg/validation"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, logging.InfoLevel, cfg.LogLevel())
	assert.Equal(t, logging.FormatConsole, cfg.LogFormat())
	assert.Equal(t, speakeasy.Options{}, cfg.Options())
	assert.Equal(t, graph.WeightsByName("weight"), cfg.WeightSpec())
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
logging:
  level: debug
  format: json
cluster:
  seed: 42
  independent_runs: 4
  subcluster: 2
  min_cluster: 0
  verbose: true
export:
  format: yaml
  compress: true
`))
	require.NoError(t, err)

	assert.Equal(t, logging.DebugLevel, cfg.LogLevel())
	assert.Equal(t, logging.FormatJSON, cfg.LogFormat())
	assert.True(t, cfg.Export.Compress)

	opts := cfg.Options()
	require.NotNil(t, opts.Seed)
	assert.Equal(t, uint64(42), *opts.Seed)
	assert.Equal(t, uint(4), *opts.IndependentRuns)
	assert.Equal(t, uint(0), *opts.MinCluster)
	assert.Nil(t, opts.TargetClusters)
	assert.True(t, opts.Verbose)

	settings, err := opts.Resolve(100)
	require.NoError(t, err)
	assert.Equal(t, 0, settings.MinCluster)
	assert.Equal(t, 2, settings.Subcluster)
	assert.False(t, settings.SeedGenerated)
}

func TestParseEmptyUsesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseWarningLevel(t *testing.T) {
	cfg, err := Parse([]byte("logging:\n  level: warning\n"))
	require.NoError(t, err)
	assert.Equal(t, logging.WarnLevel, cfg.LogLevel())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown key", "cluster:\n  runs: 3\n", ErrConfigFile},
		{"malformed", "logging: [", ErrConfigFile},
		{"bad level", "logging:\n  level: loud\n", validation.ErrInvalid},
		{"bad export format", "export:\n  format: xml\n", validation.ErrInvalid},
		{"bad weights attribute", "cluster:\n  weights: \"1bad\"\n", validation.ErrInvalid},
		{"too many threads", "cluster:\n  max_threads: 100000\n", validation.ErrInvalid},
		{"deep subclustering", "cluster:\n  subcluster: 1000\n", validation.ErrInvalid},
		{"s3 without region", "export:\n  s3:\n    bucket: results\n", validation.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "se2.yaml")

	cfg := DefaultConfig()
	cfg.Cluster.Seed = speakeasy.Ptr(uint64(7))
	cfg.Cluster.TargetClusters = speakeasy.Ptr(uint(12))
	cfg.Export.S3 = S3Config{Bucket: "results", Region: "us-east-1", Prefix: "runs/"}
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.True(t, errors.Is(err, ErrConfigFile))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
