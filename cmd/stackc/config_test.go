package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackfile/stackc/internal/core/analysis"
)

// clearEnv removes any STACKC_* variables so tests see only their own
// environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STACKC_BUILD_FILE",
		"STACKC_BUILD_OUTPUT",
		"STACKC_BUILD_SUGGEST",
		"STACKC_LOG_LEVEL",
		"STACKC_LOG_FORMAT",
	} {
		os.Unsetenv(key)
	}
}

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "Stackfile", cfg.Build.File)
	assert.Equal(t, "docker-compose.yml", cfg.Build.Output)
	assert.Equal(t, "overlap", cfg.Build.Suggest)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "stackc.yaml")
	content := `
build:
  output: out/compose.yml
  suggest: levenshtein
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "out/compose.yml", cfg.Build.Output)
	assert.Equal(t, "levenshtein", cfg.Build.Suggest)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Unset keys keep their defaults.
	assert.Equal(t, "Stackfile", cfg.Build.File)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("STACKC_BUILD_OUTPUT", "env-output.yml")
	t.Setenv("STACKC_LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "env-output.yml", cfg.Build.Output)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_FileNotFound_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Stackfile", cfg.Build.File)
	assert.Equal(t, "docker-compose.yml", cfg.Build.Output)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "stackc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("build: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_Suggester(t *testing.T) {
	cfg := &Config{Build: BuildConfig{Suggest: "overlap"}}
	assert.IsType(t, analysis.OverlapSuggester{}, cfg.Suggester())

	cfg.Build.Suggest = "levenshtein"
	assert.IsType(t, analysis.LevenshteinSuggester{}, cfg.Suggester())

	cfg.Build.Suggest = "Levenshtein"
	assert.IsType(t, analysis.LevenshteinSuggester{}, cfg.Suggester())

	cfg.Build.Suggest = ""
	assert.IsType(t, analysis.OverlapSuggester{}, cfg.Suggester())
}

func TestSetupLogger_TextFormat(t *testing.T) {
	logger := SetupLogger(&Config{Log: LogConfig{Level: "info", Format: "text"}})
	assert.NotNil(t, logger)
}

func TestSetupLogger_JSONFormat(t *testing.T) {
	logger := SetupLogger(&Config{Log: LogConfig{Level: "info", Format: "json"}})
	assert.NotNil(t, logger)
}

func TestSetupLogger_DebugLevel(t *testing.T) {
	logger := SetupLogger(&Config{Log: LogConfig{Level: "debug", Format: "text"}})
	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestSetupLogger_WarnLevel(t *testing.T) {
	logger := SetupLogger(&Config{Log: LogConfig{Level: "warning", Format: "text"}})
	assert.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	logger := SetupLogger(&Config{Log: LogConfig{Level: "chatty", Format: "text"}})
	assert.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
