package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3.0, cfg.Dedup.WindowSeconds)
	assert.Equal(t, 1e-7, cfg.Dedup.CoordinateEpsilon)
	assert.Equal(t, 3, cfg.Dedup.HistoryDepth)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "csv", cfg.Output.Format)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dedup:
  window_seconds: 5.5
  history_depth: 5
log:
  level: DEBUG
  file_path: /tmp/nextbus.log
output:
  format: siri
  producer_ref: NB
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5.5, cfg.Dedup.WindowSeconds)
	assert.Equal(t, 5, cfg.Dedup.HistoryDepth)
	// Unset fields keep their defaults.
	assert.Equal(t, 1e-7, cfg.Dedup.CoordinateEpsilon)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "/tmp/nextbus.log", cfg.Log.FilePath)
	assert.Equal(t, "siri", cfg.Output.Format)
	assert.Equal(t, "NB", cfg.Output.ProducerRef)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad format", content: "output:\n  format: xml\n"},
		{name: "bad level", content: "log:\n  level: CHATTY\n"},
		{name: "negative window", content: "dedup:\n  window_seconds: -1\n"},
		{name: "not yaml", content: "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
