package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dd0wney/cluso-speakeasy2/pkg/config"
	"github.com/dd0wney/cluso-speakeasy2/pkg/logging"
	"github.com/dd0wney/cluso-speakeasy2/pkg/metrics"
)

// app carries the state shared by all subcommands
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	logger  *logging.ZapLogger
	metrics *metrics.Registry
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("SE2")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "se2",
		Short:         "SpeakEasy2 community detection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console)")
	flags.String("metrics-file", "", "write Prometheus metrics to this file on exit")
	a.bind("config_file", flags.Lookup("config"))
	a.bind("logging.level", flags.Lookup("log-level"))
	a.bind("logging.format", flags.Lookup("log-format"))
	a.bind("metrics.file", flags.Lookup("metrics-file"))

	root.AddCommand(
		a.newClusterCommand(),
		a.newKNNCommand(),
		a.newOrderCommand(),
		a.newGenerateCommand(),
		a.newCompareCommand(),
	)
	for _, cmd := range root.Commands() {
		a.teardownOnError(cmd)
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
	return root
}

// teardownOnError makes a failing RunE still flush metrics and logs, since
// cobra skips PersistentPostRunE after an error.
func (a *app) teardownOnError(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := run(cmd, args); err != nil {
			return errors.Join(err, a.teardown())
		}
		return nil
	}
}

func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

// setup loads the configuration, applies flag and environment overrides and
// builds the logger and metrics registry.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if path := a.v.GetString("config_file"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	a.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel(), cfg.LogFormat())
	logging.SetDefaultLogger(a.logger)
	a.metrics = metrics.NewRegistry()
	return nil
}

func (a *app) teardown() error {
	if a.cfg.Metrics.File != "" {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.File); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	// Sync fails on terminals; nothing useful can be done about it
	_ = a.logger.Sync()
	return nil
}

// applyOverrides copies every key set by a flag or SE2_* environment
// variable into cfg.
func (a *app) applyOverrides(cfg *config.Config) {
	v := a.v
	setString := func(key string, dst *string) {
		if v.IsSet(key) && v.GetString(key) != "" {
			*dst = v.GetString(key)
		}
	}
	setUint := func(key string, dst **uint) {
		if v.IsSet(key) {
			*dst = ptr(v.GetUint(key))
		}
	}

	setString("logging.level", &cfg.Logging.Level)
	setString("logging.format", &cfg.Logging.Format)
	setString("metrics.file", &cfg.Metrics.File)

	setString("cluster.weights", &cfg.Cluster.Weights)
	setUint("cluster.discard_transient", &cfg.Cluster.DiscardTransient)
	setUint("cluster.independent_runs", &cfg.Cluster.IndependentRuns)
	setUint("cluster.max_threads", &cfg.Cluster.MaxThreads)
	setUint("cluster.target_clusters", &cfg.Cluster.TargetClusters)
	setUint("cluster.target_partitions", &cfg.Cluster.TargetPartitions)
	setUint("cluster.subcluster", &cfg.Cluster.Subcluster)
	setUint("cluster.min_cluster", &cfg.Cluster.MinCluster)
	if v.IsSet("cluster.seed") {
		cfg.Cluster.Seed = ptr(v.GetUint64("cluster.seed"))
	}
	if v.IsSet("cluster.verbose") {
		cfg.Cluster.Verbose = v.GetBool("cluster.verbose")
	}

	setString("export.format", &cfg.Export.Format)
	if v.IsSet("export.compress") {
		cfg.Export.Compress = v.GetBool("export.compress")
	}
	setString("export.s3.bucket", &cfg.Export.S3.Bucket)
	setString("export.s3.prefix", &cfg.Export.S3.Prefix)
	setString("export.s3.region", &cfg.Export.S3.Region)
	setString("export.s3.endpoint", &cfg.Export.S3.Endpoint)
	setString("export.s3.access_key_id", &cfg.Export.S3.AccessKeyID)
	setString("export.s3.secret_access_key", &cfg.Export.S3.SecretAccessKey)
}

func ptr[T any](v T) *T {
	return &v
}
