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
	path := filepath.Join(t.TempDir(), "csevo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 20, cfg.Defaults.Species)
	assert.Equal(t, 200.0, cfg.Defaults.BreedTimeMS)
	assert.Equal(t, 128, cfg.Cache.SimulationCapacity)
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesLayerOverDefaults(t *testing.T) {
	path := writeConfig(t, `
defaults:
  species: 54
  beam_energy: 12000
cache:
  simulation_capacity: 16
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 54, cfg.Defaults.Species)
	assert.Equal(t, 12000.0, cfg.Defaults.BeamEnergy)
	assert.Equal(t, 16, cfg.Cache.SimulationCapacity)
	// Untouched fields keep their defaults.
	assert.Equal(t, 100.0, cfg.Defaults.CurrentDensity)
	assert.Equal(t, 128, cfg.Cache.ScanCapacity)
}

func TestLoad_SchemaRejectsOutOfDomainValues(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"species too high", "defaults:\n  species: 150\n"},
		{"species too low", "defaults:\n  species: 1\n"},
		{"negative fwhm", "defaults:\n  dr_fwhm: -3\n"},
		{"zero capacity", "cache:\n  simulation_capacity: 0\n"},
		{"negative timeout", "cache:\n  timeout_ms: -1\n"},
		{"zero output steps", "solver:\n  output_steps: 0\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "defaults: [not a map"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
