package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabenherz112/compose-manager/internal/core/preset"
	"github.com/rabenherz112/compose-manager/internal/core/spec"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".compose-manager.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "infra.yml", cfg.InfraFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Presets)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
infra_file: stacks/infra.yml
log:
  level: debug
  format: json
presets:
  tiny:
    cpus: "0.1"
    memory: 32M
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "stacks/infra.yml", cfg.InfraFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	require.Contains(t, cfg.Presets, "tiny")
	assert.Equal(t, "0.1", cfg.Presets["tiny"].CPUs)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := writeConfig(t, "infra_file: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	t.Setenv("COMPOSE_MANAGER_INFRA_FILE", "from-env.yml")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env.yml", cfg.InfraFile)
}

func TestPresetTable_BuiltinsPlusOverrides(t *testing.T) {
	cfg := &Config{Presets: map[string]PresetConfig{
		"tiny": {CPUs: "0.1", Memory: "32M"},
	}}
	table, err := cfg.PresetTable()
	require.NoError(t, err)

	tiny, err := preset.Resolve(table, "tiny")
	require.NoError(t, err)
	assert.Equal(t, spec.ResourceLimits{CPULimit: 0.1, MemoryLimit: 32 * 1024 * 1024}, tiny)

	// built-ins stay available
	_, err = preset.Resolve(table, "Medium")
	assert.NoError(t, err)
}

func TestPresetTable_BadQuantity(t *testing.T) {
	cfg := &Config{Presets: map[string]PresetConfig{
		"broken": {CPUs: "lots"},
	}}
	_, err := cfg.PresetTable()
	require.Error(t, err)
	assert.ErrorIs(t, err, spec.ErrInvalidCPU)
	assert.Contains(t, err.Error(), "broken")
}

func TestSetupLogger(t *testing.T) {
	for _, cfg := range []*Config{
		{Log: LogConfig{Level: "debug", Format: "text"}},
		{Log: LogConfig{Level: "error", Format: "json"}},
		{Log: LogConfig{Level: "bogus", Format: "bogus"}},
	} {
		assert.NotNil(t, SetupLogger(cfg))
	}
}
