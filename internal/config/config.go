// Package config loads and validates csevo configuration.
//
// Configuration is YAML on disk; every loaded file is unified with an
// embedded CUE schema, so out-of-domain values (a species of 150, a
// negative capacity) are rejected at startup rather than surfacing as
// request-time errors.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Defaults are the initial control values, matching the historical
// dashboard. Breeding time is configured in milliseconds, as it was
// entered in the original UI.
type Defaults struct {
	Species             int     `yaml:"species" json:"species"`
	CurrentDensity      float64 `yaml:"current_density" json:"current_density"`
	BeamEnergy          float64 `yaml:"beam_energy" json:"beam_energy"`
	DRFwhm              float64 `yaml:"dr_fwhm" json:"dr_fwhm"`
	BreedTimeMS         float64 `yaml:"breed_time_ms" json:"breed_time_ms"`
	ContinuousInjection bool    `yaml:"continuous_injection" json:"continuous_injection"`
}

// CacheConfig sizes the memoization caches.
type CacheConfig struct {
	SimulationCapacity int `yaml:"simulation_capacity" json:"simulation_capacity"`
	ScanCapacity       int `yaml:"scan_capacity" json:"scan_capacity"`
	// TimeoutMS bounds the wait on one computation; 0 disables the
	// bound.
	TimeoutMS int `yaml:"timeout_ms" json:"timeout_ms"`
}

// SolverConfig tunes the reference solver.
type SolverConfig struct {
	OutputSteps int `yaml:"output_steps" json:"output_steps"`
}

// Config is the full csevo configuration.
type Config struct {
	Defaults Defaults     `yaml:"defaults" json:"defaults"`
	Cache    CacheConfig  `yaml:"cache" json:"cache"`
	Solver   SolverConfig `yaml:"solver" json:"solver"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Defaults: Defaults{
			Species:        20,
			CurrentDensity: 100,
			BeamEnergy:     5000,
			DRFwhm:         50,
			BreedTimeMS:    200,
		},
		Cache: CacheConfig{
			SimulationCapacity: 128,
			ScanCapacity:       128,
			TimeoutMS:          0,
		},
		Solver: SolverConfig{
			OutputSteps: 400,
		},
	}
}

// Load reads a YAML config file, layered over Default(), and
// validates the result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate unifies the configuration with the embedded CUE schema.
func (c Config) Validate() error {
	cuectx := cuecontext.New()

	schema := cuectx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup #Config: %w", err)
	}

	unified := def.Unify(cuectx.Encode(c))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
