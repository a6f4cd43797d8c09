package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/qubicDB/emocore/pkg/core"
	"github.com/qubicDB/emocore/pkg/engine"
	"github.com/qubicDB/emocore/pkg/metrics"
	"github.com/qubicDB/emocore/pkg/persistence"
	"github.com/qubicDB/emocore/pkg/remote"
)

// app holds the shared state for all subcommands.
type app struct {
	overrides   core.CLIOverrides
	dumpMetrics bool
	compact     bool

	cfg     *core.Config
	logger  zerolog.Logger
	metrics *metrics.Manager
	engine  *engine.Engine
	out     io.Writer
}

func main() {
	a := &app{out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:   "emocore",
		Short: "emocore - lexicon-driven emotion analysis",
		Long:  "Classifies text into 19 emotions, tracks emotional trends over days, and relearns its lexicon from logged interactions.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Flags())
		},
		SilenceUsage: true,
	}

	// CLI flags - highest priority in the config hierarchy.
	f := rootCmd.PersistentFlags()

	a.overrides.ConfigPath = f.StringP("config", "f", "", "Path to YAML config file (overrides EMOCORE_CONFIG env)")
	a.overrides.DataPath = f.String("data-path", "", "Data directory for lexicon, trend and interaction files")
	a.overrides.Compress = f.Bool("compress", true, "Gzip snapshot payloads")
	a.overrides.MemorySize = f.Int("memory-size", 0, "Messages remembered per session")
	a.overrides.ContextMessages = f.Int("context-messages", 0, "Prior messages blended into each classification")
	a.overrides.RetentionDays = f.Int("retention-days", 0, "Days kept by the trend store")
	a.overrides.MaxTextBytes = f.Int("max-text-bytes", 0, "Maximum text size in bytes before truncation")
	a.overrides.RetrainInterval = f.Duration("retrain-interval", 0, "Background retrain interval in the REPL (0 disables)")
	a.overrides.PersistInterval = f.Duration("persist-interval", 0, "Trend snapshot flush interval in the REPL")
	a.overrides.SessionMaxIdle = f.Duration("session-max-idle", 0, "Idle time before a REPL session is dropped")
	a.overrides.ExternalEnabled = f.Bool("external", false, "Consult the external classifier before the lexicon")
	a.overrides.ExternalModel = f.String("external-model", "", "External classifier model name")
	a.overrides.ExternalBaseURL = f.String("external-base-url", "", "OpenAI-compatible API base URL")
	a.overrides.MetricsEnabled = f.Bool("metrics", true, "Collect prometheus metrics")
	a.overrides.LogLevel = f.String("log-level", "", "Log level (debug, info, warn, error)")
	a.overrides.LogFormat = f.String("log-format", "", "Log format (console, json)")

	f.BoolVar(&a.dumpMetrics, "dump-metrics", false, "Print collected metrics in prometheus text format on exit")
	f.BoolVar(&a.compact, "compact", false, "Print single-line JSON")

	rootCmd.AddCommand(
		a.classifyCmd(),
		a.logCmd(),
		a.trendCmd(),
		a.retrainCmd(),
		a.lexiconCmd(),
		a.statsCmd(),
		a.replCmd(),
	)

	err := rootCmd.Execute()
	if cerr := a.close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", cerr)
		err = errors.Join(err, cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// open resolves configuration and builds the engine.
func (a *app) open(flags *pflag.FlagSet) error {
	// Resolve config path: --config flag > EMOCORE_CONFIG env var
	configPath := ""
	if a.overrides.ConfigPath != nil && *a.overrides.ConfigPath != "" {
		configPath = *a.overrides.ConfigPath
	} else {
		configPath = os.Getenv("EMOCORE_CONFIG")
	}

	// Load config through hierarchy: defaults -> YAML -> env vars
	cfg, err := core.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI flag overrides (only flags that were explicitly set)
	applyExplicitFlags(flags, cfg, &a.overrides)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := core.SetMaxTextBytes(int64(cfg.Engine.MaxTextBytes)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Log)

	store, err := persistence.NewStoreWithDurability(
		cfg.Storage.DataPath,
		cfg.Storage.Compress,
		persistence.DurabilityConfig{
			FsyncPolicy:   cfg.Storage.FsyncPolicy,
			FsyncInterval: cfg.Storage.FsyncInterval,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	mcfg := metrics.DefaultConfig()
	mcfg.Enabled = cfg.Metrics.Enabled
	a.metrics = metrics.NewManager(mcfg)

	opts := engine.Options{
		Config:  cfg,
		Store:   store,
		Metrics: a.metrics,
		Logger:  a.logger,
	}
	if cfg.External.Enabled {
		rc, err := remote.New(cfg.External, a.logger)
		if err != nil {
			return fmt.Errorf("failed to initialize external classifier: %w", err)
		}
		opts.Remote = rc
	}

	a.engine, err = engine.New(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	a.logger.Debug().Str("data_path", cfg.Storage.DataPath).Uint64("lexicon_version", a.engine.Lexicon().Version()).
		Msg("engine ready")
	return nil
}

func (a *app) close() error {
	if a.engine == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := a.engine.Close(ctx)
	a.engine = nil
	if err != nil {
		a.logger.Warn().Err(err).Msg("shutdown flush failed")
	}
	if a.dumpMetrics {
		if derr := a.writeMetrics(os.Stderr); derr != nil {
			err = errors.Join(err, derr)
		}
	}
	return err
}

func (a *app) writeMetrics(w io.Writer) error {
	if !a.metrics.Enabled() {
		return fmt.Errorf("metrics are disabled")
	}
	families, err := a.metrics.Registry().Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metrics.Namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// newLogger builds the process logger from the log config section.
func newLogger(cfg core.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = os.Stderr
	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// applyExplicitFlags applies only the CLI flags that were explicitly set
// by the user on the command line. Unset flags are ignored so they do not
// override values resolved from YAML or environment variables.
func applyExplicitFlags(flags *pflag.FlagSet, cfg *core.Config, o *core.CLIOverrides) {
	overrides := core.CLIOverrides{}

	if flags.Changed("data-path") {
		overrides.DataPath = o.DataPath
	}
	if flags.Changed("compress") {
		overrides.Compress = o.Compress
	}
	if flags.Changed("memory-size") {
		overrides.MemorySize = o.MemorySize
	}
	if flags.Changed("context-messages") {
		overrides.ContextMessages = o.ContextMessages
	}
	if flags.Changed("retention-days") {
		overrides.RetentionDays = o.RetentionDays
	}
	if flags.Changed("max-text-bytes") {
		overrides.MaxTextBytes = o.MaxTextBytes
	}
	if flags.Changed("retrain-interval") {
		overrides.RetrainInterval = o.RetrainInterval
	}
	if flags.Changed("persist-interval") {
		overrides.PersistInterval = o.PersistInterval
	}
	if flags.Changed("session-max-idle") {
		overrides.SessionMaxIdle = o.SessionMaxIdle
	}
	if flags.Changed("external") {
		overrides.ExternalEnabled = o.ExternalEnabled
	}
	if flags.Changed("external-model") {
		overrides.ExternalModel = o.ExternalModel
	}
	if flags.Changed("external-base-url") {
		overrides.ExternalBaseURL = o.ExternalBaseURL
	}
	if flags.Changed("metrics") {
		overrides.MetricsEnabled = o.MetricsEnabled
	}
	if flags.Changed("log-level") {
		overrides.LogLevel = o.LogLevel
	}
	if flags.Changed("log-format") {
		overrides.LogFormat = o.LogFormat
	}

	cfg.ApplyCLIOverrides(&overrides)
}
