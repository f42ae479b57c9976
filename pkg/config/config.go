// Package config provides configuration loading and validation for annorewrite.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/annorewrite/pkg/imports"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkers     = errors.New("workers must not be negative")
	ErrInvalidMaxFileSize = errors.New("invalid max file size")
	ErrInvalidImportMode  = errors.New("invalid import mode")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidDebounce    = errors.New("watch debounce must be positive")
	ErrEmptyRecipe        = errors.New("recipe name must not be empty")
)

const (
	configName = "annorewrite"
	configType = "yaml"
	envPrefix  = "ANNOREWRITE"
)

// Config holds all configuration for annorewrite.
type Config struct {
	Run       RunConfig       `mapstructure:"run"`
	Rewrite   RewriteConfig   `mapstructure:"rewrite"`
	Resolve   ResolveConfig   `mapstructure:"resolve"`
	Recipe    RecipeConfig    `mapstructure:"recipe"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Watch     WatchConfig     `mapstructure:"watch"`
}

// RunConfig controls which files are visited and what happens to the output.
type RunConfig struct {
	MaxFileSize string   `mapstructure:"max_file_size"`
	Include     []string `mapstructure:"include"`
	Exclude     []string `mapstructure:"exclude"`
	// Workers is the number of files rewritten concurrently; 0 means one per CPU.
	Workers int  `mapstructure:"workers"`
	Write   bool `mapstructure:"write"`
	Diff    bool `mapstructure:"diff"`
}

// RewriteConfig tunes the rewrite engine.
type RewriteConfig struct {
	Imports string `mapstructure:"imports"`
	Strict  bool   `mapstructure:"strict"`
}

// ResolveConfig lists types on-demand imports may resolve to.
type ResolveConfig struct {
	KnownTypes []string `mapstructure:"known_types"`
}

// RecipeConfig selects the recipe to run.
type RecipeConfig struct {
	// File is an optional recipe file loaded next to the builtins.
	File string `mapstructure:"file"`
	Name string `mapstructure:"name"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds tracing and metrics export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	MetricsFile  string  `mapstructure:"metrics_file"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// LoadConfig loads configuration from file and environment variables.
// A missing config file is not an error when configPath is empty.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/annorewrite")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("run.workers", DefaultRunWorkers)
	viperCfg.SetDefault("run.max_file_size", DefaultRunMaxFileSize)
	viperCfg.SetDefault("run.include", DefaultRunInclude())
	viperCfg.SetDefault("run.exclude", DefaultRunExclude())
	viperCfg.SetDefault("run.write", DefaultRunWrite)
	viperCfg.SetDefault("run.diff", DefaultRunDiff)

	viperCfg.SetDefault("rewrite.strict", DefaultRewriteStrict)
	viperCfg.SetDefault("rewrite.imports", DefaultRewriteImports)

	viperCfg.SetDefault("resolve.known_types", []string{})

	viperCfg.SetDefault("recipe.file", DefaultRecipeFile)
	viperCfg.SetDefault("recipe.name", DefaultRecipeName)

	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.format", DefaultLoggingFormat)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultTelemetryEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultTelemetryInsecure)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultTelemetrySampleRatio)
	viperCfg.SetDefault("telemetry.metrics_file", DefaultTelemetryMetricsFile)
	viperCfg.SetDefault("telemetry.debug_trace", false)

	viperCfg.SetDefault("watch.debounce", DefaultWatchDebounce.String())
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Run.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Run.Workers)
	}

	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}

	if _, err := c.ImportMode(); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDebounce, c.Watch.Debounce)
	}

	if c.Recipe.Name == "" {
		return ErrEmptyRecipe
	}

	return nil
}

// MaxFileSizeBytes parses Run.MaxFileSize ("1MB", "512KiB"). Zero disables the limit.
func (c *Config) MaxFileSizeBytes() (uint64, error) {
	if c.Run.MaxFileSize == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(c.Run.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidMaxFileSize, err)
	}

	return n, nil
}

// ImportMode parses Rewrite.Imports.
func (c *Config) ImportMode() (imports.Mode, error) {
	mode, err := imports.ParseMode(c.Rewrite.Imports)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidImportMode, err)
	}

	return mode, nil
}
