package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Config is the central configuration for an emocore instance.
//
// Values are resolved through a four-level hierarchy where each layer
// overrides the one beneath it:
//
//	Priority (highest → lowest):
//	  1. Programmatic overrides (CLI flags applied after loading)
//	  2. Environment variables (EMOCORE_* prefix)
//	  3. YAML configuration file
//	  4. Built-in defaults
//
// Duration fields accept Go duration strings ("30s", "5m", "1h").
// ---------------------------------------------------------------------------

// StorageConfig groups persistence settings.
type StorageConfig struct {
	// DataPath holds the lexicon snapshot, trend snapshot and interaction log.
	DataPath string `yaml:"dataPath" validate:"required"`

	// Compress gzips snapshot payloads when that makes them smaller.
	Compress bool `yaml:"compress"`

	// FsyncPolicy controls fsync behavior: always | interval | off.
	FsyncPolicy string `yaml:"fsyncPolicy" validate:"required,oneof=always interval off"`

	// FsyncInterval controls fsync cadence when fsyncPolicy is interval.
	FsyncInterval time.Duration `yaml:"fsyncInterval" validate:"gte=0"`
}

// EngineConfig groups the scoring pipeline constants.
type EngineConfig struct {
	// MemorySize bounds the per-session conversation memory.
	MemorySize int `yaml:"memorySize" validate:"gte=1,lte=100"`

	// ContextMessages is how many prior messages feed the context blender.
	ContextMessages int `yaml:"contextMessages" validate:"gte=0,lte=20"`

	// ContextWeight scales the normalized context vector before blending.
	ContextWeight float64 `yaml:"contextWeight" validate:"gte=0,lte=1"`

	// TodayWeight and YesterdayWeight scale the temporal frequency terms.
	TodayWeight     float64 `yaml:"todayWeight" validate:"gte=0,lte=2"`
	YesterdayWeight float64 `yaml:"yesterdayWeight" validate:"gte=0,lte=2"`

	// PhraseMultiplier scales phrase weights per occurrence.
	PhraseMultiplier float64 `yaml:"phraseMultiplier" validate:"gt=0,lte=5"`

	// RetentionDays bounds the number of day-keys kept by the trend store.
	RetentionDays int `yaml:"retentionDays" validate:"gte=1,lte=366"`

	// MaxTextBytes truncates classified and logged text.
	MaxTextBytes int `yaml:"maxTextBytes" validate:"gte=256"`
}

// RetrainConfig groups lexicon retraining settings.
type RetrainConfig struct {
	MinSamples       int     `yaml:"minSamples" validate:"gte=1"`
	MinOccurrences   int     `yaml:"minOccurrences" validate:"gte=1"`
	TopKeywords      int     `yaml:"topKeywords" validate:"gte=1"`
	MaxKeywords      int     `yaml:"maxKeywords" validate:"gte=1"`
	TopPhrases       int     `yaml:"topPhrases" validate:"gte=0"`
	ExclusivityDecay float64 `yaml:"exclusivityDecay" validate:"gt=0,lte=1"`

	// Interval schedules background retraining. 0 disables it.
	Interval time.Duration `yaml:"interval" validate:"gte=0"`
}

// SessionConfig groups conversation memory lifecycle settings.
type SessionConfig struct {
	// MaxIdle is how long a session may stay untouched before it is swept.
	MaxIdle time.Duration `yaml:"maxIdle" validate:"gt=0"`

	// SweepInterval controls how often idle sessions are collected.
	SweepInterval time.Duration `yaml:"sweepInterval" validate:"gt=0"`
}

// DaemonConfig groups background daemon intervals.
type DaemonConfig struct {
	// PersistInterval controls how often the trend snapshot is flushed.
	PersistInterval time.Duration `yaml:"persistInterval" validate:"gt=0"`
}

// ExternalConfig configures the optional remote classifier.
type ExternalConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BaseURL        string        `yaml:"baseURL" validate:"omitempty,url"`
	APIKey         string        `yaml:"apiKey"`
	Model          string        `yaml:"model"`
	Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
	RateLimitRPS   float64       `yaml:"rateLimitRPS" validate:"gte=0"`
	RateLimitBurst int           `yaml:"rateLimitBurst" validate:"gte=0"`
}

// MetricsConfig toggles prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig configures the zerolog logger built by the CLI.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Config is the root configuration object.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Engine   EngineConfig   `yaml:"engine"`
	Retrain  RetrainConfig  `yaml:"retrain"`
	Session  SessionConfig  `yaml:"session"`
	Daemons  DaemonConfig   `yaml:"daemons"`
	External ExternalConfig `yaml:"external"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// ---------------------------------------------------------------------------
// Factory functions
// ---------------------------------------------------------------------------

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			DataPath:      "./data",
			Compress:      true,
			FsyncPolicy:   "interval",
			FsyncInterval: 1 * time.Second,
		},
		Engine: EngineConfig{
			MemorySize:       10,
			ContextMessages:  3,
			ContextWeight:    0.3,
			TodayWeight:      0.5,
			YesterdayWeight:  0.2,
			PhraseMultiplier: 1.5,
			RetentionDays:    30,
			MaxTextBytes:     DefaultMaxTextBytes,
		},
		Retrain: RetrainConfig{
			MinSamples:       10,
			MinOccurrences:   2,
			TopKeywords:      30,
			MaxKeywords:      40,
			TopPhrases:       5,
			ExclusivityDecay: 0.7,
			Interval:         0,
		},
		Session: SessionConfig{
			MaxIdle:       30 * time.Minute,
			SweepInterval: 1 * time.Minute,
		},
		Daemons: DaemonConfig{
			PersistInterval: 1 * time.Minute,
		},
		External: ExternalConfig{
			Enabled:        false,
			Model:          "gpt-4o-mini",
			Timeout:        3 * time.Second,
			RateLimitRPS:   2,
			RateLimitBurst: 4,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ConfigFromFile reads a YAML file and merges it over the defaults.
// Fields absent from the file keep their defaults.
func ConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// ConfigFromEnv applies environment overrides to cfg, creating a default
// Config when cfg is nil.
//
//	EMOCORE_DATA_PATH          → Storage.DataPath
//	EMOCORE_COMPRESS           → Storage.Compress
//	EMOCORE_FSYNC_POLICY       → Storage.FsyncPolicy
//	EMOCORE_FSYNC_INTERVAL     → Storage.FsyncInterval
//	EMOCORE_MEMORY_SIZE        → Engine.MemorySize
//	EMOCORE_CONTEXT_MESSAGES   → Engine.ContextMessages
//	EMOCORE_CONTEXT_WEIGHT     → Engine.ContextWeight
//	EMOCORE_RETENTION_DAYS     → Engine.RetentionDays
//	EMOCORE_MAX_TEXT_BYTES     → Engine.MaxTextBytes
//	EMOCORE_RETRAIN_MIN_SAMPLES→ Retrain.MinSamples
//	EMOCORE_RETRAIN_INTERVAL   → Retrain.Interval
//	EMOCORE_SESSION_MAX_IDLE   → Session.MaxIdle
//	EMOCORE_PERSIST_INTERVAL   → Daemons.PersistInterval
//	EMOCORE_EXTERNAL_ENABLED   → External.Enabled
//	EMOCORE_EXTERNAL_BASE_URL  → External.BaseURL
//	EMOCORE_EXTERNAL_API_KEY   → External.APIKey
//	EMOCORE_EXTERNAL_MODEL     → External.Model
//	EMOCORE_EXTERNAL_TIMEOUT   → External.Timeout
//	EMOCORE_METRICS_ENABLED    → Metrics.Enabled
//	EMOCORE_LOG_LEVEL          → Log.Level
//	EMOCORE_LOG_FORMAT         → Log.Format
func ConfigFromEnv(cfg *Config) *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// -- Storage --
	setEnvStr("EMOCORE_DATA_PATH", &cfg.Storage.DataPath)
	setEnvBool("EMOCORE_COMPRESS", &cfg.Storage.Compress)
	setEnvStr("EMOCORE_FSYNC_POLICY", &cfg.Storage.FsyncPolicy)
	setEnvDuration("EMOCORE_FSYNC_INTERVAL", &cfg.Storage.FsyncInterval)

	// -- Engine --
	setEnvInt("EMOCORE_MEMORY_SIZE", &cfg.Engine.MemorySize)
	setEnvInt("EMOCORE_CONTEXT_MESSAGES", &cfg.Engine.ContextMessages)
	setEnvFloat("EMOCORE_CONTEXT_WEIGHT", &cfg.Engine.ContextWeight)
	setEnvInt("EMOCORE_RETENTION_DAYS", &cfg.Engine.RetentionDays)
	setEnvInt("EMOCORE_MAX_TEXT_BYTES", &cfg.Engine.MaxTextBytes)

	// -- Retrain --
	setEnvInt("EMOCORE_RETRAIN_MIN_SAMPLES", &cfg.Retrain.MinSamples)
	setEnvDuration("EMOCORE_RETRAIN_INTERVAL", &cfg.Retrain.Interval)

	// -- Session / daemons --
	setEnvDuration("EMOCORE_SESSION_MAX_IDLE", &cfg.Session.MaxIdle)
	setEnvDuration("EMOCORE_PERSIST_INTERVAL", &cfg.Daemons.PersistInterval)

	// -- External --
	setEnvBool("EMOCORE_EXTERNAL_ENABLED", &cfg.External.Enabled)
	setEnvStr("EMOCORE_EXTERNAL_BASE_URL", &cfg.External.BaseURL)
	setEnvStr("EMOCORE_EXTERNAL_API_KEY", &cfg.External.APIKey)
	setEnvStr("EMOCORE_EXTERNAL_MODEL", &cfg.External.Model)
	setEnvDuration("EMOCORE_EXTERNAL_TIMEOUT", &cfg.External.Timeout)

	// -- Metrics / log --
	setEnvBool("EMOCORE_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setEnvStr("EMOCORE_LOG_LEVEL", &cfg.Log.Level)
	setEnvStr("EMOCORE_LOG_FORMAT", &cfg.Log.Format)

	return cfg
}

// LoadConfig resolves defaults, the optional YAML file and the environment.
// The caller may then apply CLI overrides.
func LoadConfig(configPath string) (*Config, error) {
	var cfg *Config

	if configPath != "" {
		var err error
		cfg, err = ConfigFromFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = DefaultConfig()
	}

	cfg = ConfigFromEnv(cfg)
	return cfg, nil
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

var configValidator = validator.New()

// Validate checks field constraints, then cross-field rules. It normalizes
// a few string fields in place.
func (c *Config) Validate() error {
	c.Storage.FsyncPolicy = strings.ToLower(strings.TrimSpace(c.Storage.FsyncPolicy))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q check (value %v)", configFieldPath(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return err
	}

	if c.Storage.FsyncPolicy == "interval" && c.Storage.FsyncInterval <= 0 {
		return fmt.Errorf("storage.fsyncInterval must be > 0 when storage.fsyncPolicy is interval")
	}
	if c.Retrain.MaxKeywords < c.Retrain.TopKeywords {
		return fmt.Errorf("retrain.maxKeywords (%d) must be >= retrain.topKeywords (%d)",
			c.Retrain.MaxKeywords, c.Retrain.TopKeywords)
	}
	if c.Engine.ContextMessages > c.Engine.MemorySize {
		return fmt.Errorf("engine.contextMessages (%d) must be <= engine.memorySize (%d)",
			c.Engine.ContextMessages, c.Engine.MemorySize)
	}
	if c.Session.SweepInterval > c.Session.MaxIdle {
		return fmt.Errorf("session.sweepInterval (%v) must be <= session.maxIdle (%v)",
			c.Session.SweepInterval, c.Session.MaxIdle)
	}

	if c.External.Enabled {
		if c.External.APIKey == "" {
			return fmt.Errorf("external.apiKey must not be empty when external is enabled")
		}
		if c.External.Model == "" {
			return fmt.Errorf("external.model must not be empty when external is enabled")
		}
		if c.External.Timeout <= 0 {
			return fmt.Errorf("external.timeout must be > 0 when external is enabled")
		}
	}

	if c.Retrain.Interval > 0 && c.Retrain.Interval < time.Minute {
		log.Warn().Dur("interval", c.Retrain.Interval).Msg("retrain.interval is very aggressive; every run rescans the interaction log")
	}
	if c.Daemons.PersistInterval < 5*time.Second {
		log.Warn().Dur("interval", c.Daemons.PersistInterval).Msg("daemons.persistInterval is very aggressive; expect more disk I/O")
	}

	return nil
}

// configFieldPath turns "Config.Storage.DataPath" into "storage.dataPath".
func configFieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p == "" {
			continue
		}
		switch {
		case p == "APIKey":
			parts[i] = "apiKey"
		case p == "BaseURL":
			parts[i] = "baseURL"
		case p == "RateLimitRPS":
			parts[i] = "rateLimitRPS"
		default:
			parts[i] = strings.ToLower(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, ".")
}

// ---------------------------------------------------------------------------
// Environment variable helpers
// ---------------------------------------------------------------------------

func setEnvStr(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// setEnvBool accepts "true"/"1" and "false"/"0".
func setEnvBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*target = b
		}
	}
}

func setEnvInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func setEnvDuration(key string, target *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}

func setEnvFloat(key string, target *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

// ---------------------------------------------------------------------------
// CLI flag overrides, the final layer of the configuration hierarchy.
// ---------------------------------------------------------------------------

// CLIOverrides carries values set through command-line flags. Pointer
// fields stay nil when the flag was not given.
type CLIOverrides struct {
	ConfigPath      *string
	DataPath        *string
	Compress        *bool
	MemorySize      *int
	ContextMessages *int
	RetentionDays   *int
	MaxTextBytes    *int
	RetrainInterval *time.Duration
	PersistInterval *time.Duration
	SessionMaxIdle  *time.Duration
	ExternalEnabled *bool
	ExternalModel   *string
	ExternalBaseURL *string
	MetricsEnabled  *bool
	LogLevel        *string
	LogFormat       *string
}

// ApplyCLIOverrides patches the Config with explicitly-set flags only.
func (c *Config) ApplyCLIOverrides(o *CLIOverrides) {
	if o == nil {
		return
	}
	if o.DataPath != nil {
		c.Storage.DataPath = *o.DataPath
	}
	if o.Compress != nil {
		c.Storage.Compress = *o.Compress
	}
	if o.MemorySize != nil {
		c.Engine.MemorySize = *o.MemorySize
	}
	if o.ContextMessages != nil {
		c.Engine.ContextMessages = *o.ContextMessages
	}
	if o.RetentionDays != nil {
		c.Engine.RetentionDays = *o.RetentionDays
	}
	if o.MaxTextBytes != nil {
		c.Engine.MaxTextBytes = *o.MaxTextBytes
	}
	if o.RetrainInterval != nil {
		c.Retrain.Interval = *o.RetrainInterval
	}
	if o.PersistInterval != nil {
		c.Daemons.PersistInterval = *o.PersistInterval
	}
	if o.SessionMaxIdle != nil {
		c.Session.MaxIdle = *o.SessionMaxIdle
	}
	if o.ExternalEnabled != nil {
		c.External.Enabled = *o.ExternalEnabled
	}
	if o.ExternalModel != nil {
		c.External.Model = *o.ExternalModel
	}
	if o.ExternalBaseURL != nil {
		c.External.BaseURL = *o.ExternalBaseURL
	}
	if o.MetricsEnabled != nil {
		c.Metrics.Enabled = *o.MetricsEnabled
	}
	if o.LogLevel != nil {
		c.Log.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		c.Log.Format = *o.LogFormat
	}
}

// ---------------------------------------------------------------------------
// Lifecycle helpers
// ---------------------------------------------------------------------------

// WaitForShutdown blocks until SIGINT/SIGTERM arrives or ctx ends, then
// cancels ctx.
func WaitForShutdown(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	case <-ctx.Done():
	}
}
