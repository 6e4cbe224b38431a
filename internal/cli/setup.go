package cli

import (
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebitlab/csevo/internal/config"
	"github.com/ebitlab/csevo/internal/params"
	"github.com/ebitlab/csevo/internal/physics"
	"github.com/ebitlab/csevo/internal/pipeline"
)

// buildPipeline loads configuration and assembles the solver and the
// cached pipeline around it.
func buildPipeline(opts *RootOptions) (*pipeline.Pipeline, config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "loading config", err)
	}

	engine := physics.NewEngine(physics.WithOutputSteps(cfg.Solver.OutputSteps))
	p, err := pipeline.New(engine, pipeline.Config{
		SimulationCapacity: cfg.Cache.SimulationCapacity,
		ScanCapacity:       cfg.Cache.ScanCapacity,
		Timeout:            time.Duration(cfg.Cache.TimeoutMS) * time.Millisecond,
	}, nil)
	if err != nil {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "building pipeline", err)
	}
	return p, cfg, nil
}

// requestFlags mirror the dashboard controls. They are registered as
// strings so the canonicalizer, not the flag parser, owns numeric
// coercion and domain validation; empty means "use the configured
// default".
type requestFlags struct {
	Species        string
	CurrentDensity string
	BeamEnergy     string
	Fwhm           string
	BreedTimeMS    string
	CNI            bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Species, "species", "z", "", "nuclear charge Z of the element (2-105)")
	cmd.Flags().StringVarP(&f.CurrentDensity, "current-density", "j", "", "beam current density (A/cm^2)")
	cmd.Flags().StringVarP(&f.BeamEnergy, "beam-energy", "e", "", "beam energy (eV)")
	cmd.Flags().StringVar(&f.Fwhm, "fwhm", "", "beam energy FWHM for dielectronic recombination (eV)")
	cmd.Flags().StringVar(&f.BreedTimeMS, "breed-time-ms", "", "breeding time (ms)")
	cmd.Flags().BoolVar(&f.CNI, "cni", false, "enable continuous neutral injection")
}

// toRequest builds the canonical request from flags layered over the
// configured defaults.
func (f *requestFlags) toRequest(cmd *cobra.Command, cfg config.Config) (params.SimulationRequest, error) {
	raw := params.RawSimulation{
		Species:        orDefault(f.Species, cfg.Defaults.Species),
		CurrentDensity: orDefault(f.CurrentDensity, cfg.Defaults.CurrentDensity),
		BeamEnergy:     orDefault(f.BeamEnergy, cfg.Defaults.BeamEnergy),
		DRFwhm:         orDefault(f.Fwhm, cfg.Defaults.DRFwhm),
	}

	// Breeding time is entered in milliseconds, simulated in seconds.
	breedMS := cfg.Defaults.BreedTimeMS
	if f.BreedTimeMS != "" {
		var err error
		breedMS, err = strconv.ParseFloat(f.BreedTimeMS, 64)
		if err != nil {
			return params.SimulationRequest{},
				WrapExitError(ExitCommandError, "invalid --breed-time-ms", err)
		}
	}
	raw.BreedTime = breedMS / 1000

	cni := cfg.Defaults.ContinuousInjection
	if cmd.Flags().Changed("cni") {
		cni = f.CNI
	}
	if cni {
		raw.Selection = []string{params.ContinuousInjectionToken}
	}

	req, err := params.CanonicalizeSimulation(raw)
	if err != nil {
		return params.SimulationRequest{}, WrapExitError(ExitCommandError, "invalid parameters", err)
	}
	return req, nil
}

// orDefault keeps raw flag strings when given, falling back to the
// configured value otherwise.
func orDefault[T any](flag string, def T) any {
	if flag != "" {
		return flag
	}
	return def
}

// asCommandError classifies pipeline failures: bad input is a command
// error, everything else a derivation failure.
func asCommandError(err error) error {
	var perr *params.InvalidParameterError
	if errors.As(err, &perr) {
		return WrapExitError(ExitCommandError, "invalid parameters", err)
	}
	return WrapExitError(ExitFailure, "derivation failed", err)
}
