// Package config loads gitattr configuration from a YAML file and GITATTR_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrEmptyGitBinary     = errors.New("git binary must not be empty")
	ErrInvalidTimeout     = errors.New("git command timeout must be positive")
	ErrInvalidOutputLimit = errors.New("git max output must be a positive byte size")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("log format must be json or text")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
	ErrInvalidCacheSize   = errors.New("detail cache size must be a byte size")
)

const (
	envPrefix  = "GITATTR"
	configName = "gitattr"

	defaultGitBinary      = "git"
	defaultCommandTimeout = "30s"
	defaultMaxOutput      = "64MB"
	defaultDetailCache    = "32MB"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"

	// FormatJSON selects JSON log records.
	FormatJSON = "json"
	// FormatText selects logfmt-style log records.
	FormatText = "text"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Config holds all configuration for gitattr.
type Config struct {
	Git           GitConfig           `mapstructure:"git"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Cache         CacheConfig         `mapstructure:"cache"`
}

// GitConfig controls how the git binary is invoked.
type GitConfig struct {
	Binary         string        `mapstructure:"binary"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	// MaxOutputBytes is a human-readable size such as "64MB" or "1GiB".
	MaxOutputBytes string `mapstructure:"max_output_bytes"`

	// MaxOutput is MaxOutputBytes in bytes, filled in by LoadConfig.
	MaxOutput int64 `mapstructure:"-"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds OpenTelemetry export settings.
type ObservabilityConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	// OTLPHeaders uses the "key=value,key=value" form.
	OTLPHeaders string  `mapstructure:"otlp_headers"`
	Environment string  `mapstructure:"environment"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	DebugTrace  bool    `mapstructure:"debug_trace"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	// Addr is the listen address of /metrics, /healthz and /readyz.
	// Empty disables the listener.
	Addr string `mapstructure:"addr"`
}

// CacheConfig bounds the in-memory revision detail cache.
type CacheConfig struct {
	// DetailSize is a human-readable size; "0" disables the cache.
	DetailSize string `mapstructure:"detail_size"`

	// DetailBytes is DetailSize in bytes, filled in by LoadConfig.
	DetailBytes int64 `mapstructure:"-"`
}

// LoadConfig loads configuration from configPath, or from gitattr.yaml in
// the usual locations when configPath is empty. A missing file in the
// search path is not an error; a missing explicit file is.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/gitattr")
		viperCfg.AddConfigPath("/etc/gitattr")
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

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("git.binary", defaultGitBinary)
	viperCfg.SetDefault("git.command_timeout", defaultCommandTimeout)
	viperCfg.SetDefault("git.max_output_bytes", defaultMaxOutput)

	viperCfg.SetDefault("logging.level", defaultLogLevel)
	viperCfg.SetDefault("logging.format", defaultLogFormat)

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.debug_trace", false)

	viperCfg.SetDefault("metrics.addr", "")

	viperCfg.SetDefault("cache.detail_size", defaultDetailCache)
}

// validateConfig checks every field and resolves Git.MaxOutput.
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Git.Binary) == "" {
		return ErrEmptyGitBinary
	}

	if config.Git.CommandTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, config.Git.CommandTimeout)
	}

	size, err := humanize.ParseBytes(config.Git.MaxOutputBytes)
	if err != nil || size == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidOutputLimit, config.Git.MaxOutputBytes)
	}

	config.Git.MaxOutput = int64(min(size, 1<<62))

	cacheSize, err := humanize.ParseBytes(config.Cache.DetailSize)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCacheSize, config.Cache.DetailSize)
	}

	config.Cache.DetailBytes = int64(min(cacheSize, 1<<62))

	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch strings.ToLower(config.Logging.Format) {
	case FormatJSON, FormatText:
		config.Logging.Format = strings.ToLower(config.Logging.Format)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Observability.SampleRatio < 0 || config.Observability.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Observability.SampleRatio)
	}

	return nil
}
