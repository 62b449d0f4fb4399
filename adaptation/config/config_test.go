package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	require.Equal(t, "cifar10", cfg.Defaults.Dataset)
	require.Equal(t, "snow", cfg.Defaults.Corruption)
	require.Equal(t, 5, cfg.Defaults.Level)
	require.Equal(t, "bnm", cfg.Defaults.Method)
	require.Equal(t, "100000", cfg.Defaults.NumSample)
	require.Equal(t, 0.001, cfg.Defaults.LearningRate)
	require.Equal(t, 128, cfg.Defaults.BatchSize)
	require.Equal(t, 12, cfg.Defaults.Workers)
	require.Equal(t, "process", cfg.ExecutorMode)
}

func TestLoadConfigOverride(t *testing.T) {
	content := `
defaults:
    corruption: fog
    method: tent
executorMode: container
runWorkerCount: 2
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("CONFIG_FILE", path)

	cfg := defaultConfig()
	require.NoError(t, loadConfig(cfg))

	require.Equal(t, "fog", cfg.Defaults.Corruption)
	require.Equal(t, "tent", cfg.Defaults.Method)
	require.Equal(t, "container", cfg.ExecutorMode)
	require.Equal(t, 2, cfg.RunWorkerCount)

	// untouched fields keep their defaults
	require.Equal(t, "cifar10", cfg.Defaults.Dataset)
	require.Equal(t, 128, cfg.Defaults.BatchSize)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := defaultConfig()
	require.NoError(t, loadConfig(cfg))
	require.Equal(t, "snow", cfg.Defaults.Corruption)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("no_such_key: 1\n"), 0644))
	t.Setenv("CONFIG_FILE", path)

	require.Error(t, loadConfig(defaultConfig()))
}
