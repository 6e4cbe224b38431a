// Package physics is the simulation collaborator behind the
// derivation pipeline: a charge-state evolution solver and the
// cross-section models it is built from.
//
// The model is intentionally simple. A species with nuclear charge Z
// evolves over charge states 0..Z, coupled to its neighbours through
// electron-impact ionisation (up) and radiative plus dielectronic
// recombination (down), with rate coefficients fixed by the beam
// parameters. The resulting linear system is integrated with
// fixed-step RK4, substepped to keep the stiffest rate resolved.
package physics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ebitlab/csevo/internal/params"
	"github.com/ebitlab/csevo/internal/series"
)

// ErrNonConvergent reports a run that could not be integrated: the
// rate matrix is too stiff for the step budget, or the state left the
// finite domain.
var ErrNonConvergent = errors.New("simulation did not converge")

const (
	// electronCharge in coulomb, for converting current density to
	// electron flux.
	electronCharge = 1.602176634e-19

	// maxRateStep bounds rate*dt per RK4 substep. Well inside the
	// RK4 stability region and small enough for plotting accuracy.
	maxRateStep = 0.1

	defaultOutputSteps = 400
	defaultSubStepCap  = 4_000_000
)

// Engine integrates charge-state evolution and evaluates
// cross-section scans. A single Engine is stateless and safe for
// concurrent use.
type Engine struct {
	outputSteps int
	subStepCap  int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithOutputSteps sets the number of output grid intervals; the
// result carries outputSteps+1 samples including both endpoints.
func WithOutputSteps(n int) EngineOption {
	return func(e *Engine) {
		e.outputSteps = n
	}
}

// WithSubStepCap bounds the total number of internal RK4 substeps a
// single run may take before failing as non-convergent.
func WithSubStepCap(n int) EngineOption {
	return func(e *Engine) {
		e.subStepCap = n
	}
}

// NewEngine creates an Engine with default resolution.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		outputSteps: defaultOutputSteps,
		subStepCap:  defaultSubStepCap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunSimulation integrates the charge-state populations of the
// requested species over [0, BreedTime].
//
// The initial population is one unit in charge state 1 (singly
// charged injection). Continuous neutral injection adds a constant
// source of one unit per breeding time into charge state 0.
//
// The returned result has Time[0] == 0 and Time[T-1] == BreedTime
// exactly. The context is checked between output steps; cancellation
// surfaces as ctx.Err().
func (e *Engine) RunSimulation(ctx context.Context, req params.SimulationRequest) (series.SimulationResult, error) {
	if err := req.Validate(); err != nil {
		return series.SimulationResult{}, err
	}

	z := req.Species
	states := z + 1
	flux := req.CurrentDensity / electronCharge // electrons / (cm^2 s)

	up := make([]float64, states)
	down := make([]float64, states)
	for q := 0; q < states; q++ {
		up[q] = flux * ionisationXS(z, q, req.BeamEnergy)
		down[q] = flux * (recombinationXS(q, req.BeamEnergy) +
			dielectronicXS(q, req.BeamEnergy, req.DRFwhm))
	}

	maxRate := 0.0
	for q := 0; q < states; q++ {
		if r := up[q] + down[q]; r > maxRate {
			maxRate = r
		}
	}

	dtOut := req.BreedTime / float64(e.outputSteps)
	subSteps := 1
	if maxRate > 0 {
		subSteps = int(math.Ceil(maxRate * dtOut / maxRateStep))
		if subSteps < 1 {
			subSteps = 1
		}
	}
	if subSteps*e.outputSteps > e.subStepCap {
		return series.SimulationResult{}, fmt.Errorf(
			"%w: rate matrix too stiff (%.3g 1/s needs %d substeps, cap %d)",
			ErrNonConvergent, maxRate, subSteps*e.outputSteps, e.subStepCap)
	}
	dt := dtOut / float64(subSteps)

	var source float64
	if req.ContinuousInjection {
		source = 1.0 / req.BreedTime
	}

	deriv := func(y, dy []float64) {
		for q := 0; q < states; q++ {
			v := -(up[q] + down[q]) * y[q]
			if q > 0 {
				v += up[q-1] * y[q-1]
			}
			if q < states-1 {
				v += down[q+1] * y[q+1]
			}
			dy[q] = v
		}
		dy[0] += source
	}

	y := make([]float64, states)
	y[1] = 1.0 // singly charged injection

	grid := make([]float64, e.outputSteps+1)
	population := make([][]float64, states)
	for q := range population {
		population[q] = make([]float64, e.outputSteps+1)
	}
	record := func(step int) {
		for q := 0; q < states; q++ {
			population[q][step] = y[q]
		}
	}
	record(0)

	k1 := make([]float64, states)
	k2 := make([]float64, states)
	k3 := make([]float64, states)
	k4 := make([]float64, states)
	tmp := make([]float64, states)

	for step := 1; step <= e.outputSteps; step++ {
		select {
		case <-ctx.Done():
			return series.SimulationResult{}, ctx.Err()
		default:
		}

		for s := 0; s < subSteps; s++ {
			deriv(y, k1)
			floats.AddScaledTo(tmp, y, dt/2, k1)
			deriv(tmp, k2)
			floats.AddScaledTo(tmp, y, dt/2, k2)
			deriv(tmp, k3)
			floats.AddScaledTo(tmp, y, dt, k3)
			deriv(tmp, k4)

			for q := 0; q < states; q++ {
				y[q] += dt / 6 * (k1[q] + 2*k2[q] + 2*k3[q] + k4[q])
				// RK4 can undershoot zero by an integration-error
				// margin on fast-draining states.
				if y[q] < 0 {
					y[q] = 0
				}
			}
		}

		if err := checkFinite(y); err != nil {
			return series.SimulationResult{}, fmt.Errorf("%w at t=%.6g s: %v",
				ErrNonConvergent, dtOut*float64(step), err)
		}

		grid[step] = dtOut * float64(step)
		record(step)
	}
	grid[e.outputSteps] = req.BreedTime // exact endpoint, no rounding drift

	return series.SimulationResult{Time: grid, Population: population}, nil
}

func checkFinite(y []float64) error {
	for q, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("state %d is %v", q, v)
		}
	}
	return nil
}
