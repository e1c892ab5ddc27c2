package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/stackfile/stackc/internal/core/analysis"
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds the CLI configuration, populated from defaults, an optional
// config file, and STACKC_* environment variables, in that order.
type Config struct {
	Build BuildConfig `mapstructure:"build"`
	Log   LogConfig   `mapstructure:"log"`
}

type BuildConfig struct {
	File    string `mapstructure:"file"`    // default input path
	Output  string `mapstructure:"output"`  // default output path, "-" for stdout
	Suggest string `mapstructure:"suggest"` // "overlap" or "levenshtein"
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from the given file path (optional) and
// environment variables. Environment variables use the STACKC_ prefix with
// underscores, e.g. STACKC_BUILD_OUTPUT, STACKC_LOG_LEVEL.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("build.file", "Stackfile")
	v.SetDefault("build.output", "docker-compose.yml")
	v.SetDefault("build.suggest", "overlap")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only a malformed file is fatal; a missing one falls back to
			// defaults and environment.
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("STACKC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Suggester returns the typo suggester selected by build.suggest.
func (c *Config) Suggester() analysis.Suggester {
	if strings.EqualFold(c.Build.Suggest, "levenshtein") {
		return analysis.LevenshteinSuggester{}
	}
	return analysis.OverlapSuggester{}
}

// SetupLogger creates a structured logger on stderr, keeping stdout free for
// manifest output.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
