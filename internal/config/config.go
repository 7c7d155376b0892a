package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. SDKDRIFT_LOG_LEVEL.
const EnvPrefix = "SDKDRIFT"

// Config holds all application configuration.
type Config struct {
	Scan     ScanConfig     `mapstructure:"scan"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Graph    GraphConfig    `mapstructure:"graph"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Gates    GatesConfig    `mapstructure:"gates"`
}

type ScanConfig struct {
	Extension  string `mapstructure:"extension"`
	TestPrefix string `mapstructure:"test_prefix"`
	// ModuleIDs=false produces "<namespace>.<method>" ids.
	ModuleIDs    bool `mapstructure:"module_ids"`
	IncludeAsync bool `mapstructure:"include_async"`
}

type OutputConfig struct {
	Pretty bool `mapstructure:"pretty"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type GraphConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// GatesConfig holds drift gate thresholds. A negative max disables the gate.
type GatesConfig struct {
	MaxRemoved  int     `mapstructure:"max_removed"`
	MaxBreaking int     `mapstructure:"max_breaking"`
	MinScore    float64 `mapstructure:"min_score"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("scan.extension", ".py")
	v.SetDefault("scan.test_prefix", "test_")
	v.SetDefault("scan.module_ids", true)
	v.SetDefault("scan.include_async", false)
	v.SetDefault("output.pretty", false)
	v.SetDefault("log.level", "error")
	v.SetDefault("log.format", "text")
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.service_name", "sdkdrift")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("graph.uri", "")
	v.SetDefault("graph.username", "")
	v.SetDefault("graph.password", "")
	v.SetDefault("snapshot.dir", ".sdkdrift")
	v.SetDefault("gates.max_removed", 0)
	v.SetDefault("gates.max_breaking", 0)
	v.SetDefault("gates.min_score", 0.0)
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		warnings = append(warnings, fmt.Sprintf("tracing sample_rate %.2f is outside [0.0, 1.0]", c.Tracing.SampleRate))
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		warnings = append(warnings, fmt.Sprintf("unknown log level '%s', using error", c.Log.Level))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		warnings = append(warnings, fmt.Sprintf("unknown log format '%s', using text", c.Log.Format))
	}

	if c.Scan.Extension == "" {
		warnings = append(warnings, "scan extension is empty, using .py")
	}

	if c.Gates.MinScore < 0 || c.Gates.MinScore > 100 {
		warnings = append(warnings, fmt.Sprintf("gates min_score %.1f is outside [0, 100]", c.Gates.MinScore))
	}

	if c.Graph.URI != "" && c.Graph.Username == "" {
		warnings = append(warnings, "graph uri is set but username is empty")
	}

	return warnings
}

// Load reads configuration from an optional file and the environment.
// An empty path uses defaults plus SDKDRIFT_* overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if cfg.Scan.Extension == "" {
		cfg.Scan.Extension = ".py"
	}
	return &cfg, nil
}

// NewLogger builds the structured logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "":
		return slog.LevelError, true
	default:
		return slog.LevelError, false
	}
}
