// Package series holds the data exchanged between the simulation
// collaborator and the display layer, and the pure derivations over
// it: fractional-abundance normalization, temporal slicing, and
// peak-time extraction.
//
// Everything in this package is deterministic and side-effect free.
// Figures are produced once and never mutated afterwards.
package series

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedResult reports a simulation or scan result violating its
// structural invariants (mismatched lengths, non-increasing grid).
// Results come from a collaborator, so this surfaces as an error
// rather than a panic.
var ErrMalformedResult = errors.New("malformed result")

// SimulationResult is the raw output of one charge-state evolution
// run. Time is strictly increasing; Population holds one row per
// charge state, each of the same length as Time. Owned by whoever
// produced it and treated as immutable from then on.
type SimulationResult struct {
	Time       []float64
	Population [][]float64 // indexed by charge state, then time step
}

// Validate checks the structural invariants of the result.
func (r SimulationResult) Validate() error {
	if len(r.Time) == 0 {
		return fmt.Errorf("%w: empty time grid", ErrMalformedResult)
	}
	for i := 1; i < len(r.Time); i++ {
		if r.Time[i] <= r.Time[i-1] {
			return fmt.Errorf("%w: time grid not strictly increasing at index %d", ErrMalformedResult, i)
		}
	}
	for q, pop := range r.Population {
		if len(pop) != len(r.Time) {
			return fmt.Errorf("%w: population row %d has %d samples, want %d",
				ErrMalformedResult, q, len(pop), len(r.Time))
		}
	}
	return nil
}

// ScanResult is the raw output of one cross-section energy scan.
// Energy is strictly increasing; CrossSection holds one row per charge
// state, each of the same length as Energy.
type ScanResult struct {
	Energy       []float64
	CrossSection [][]float64
}

// Validate checks the structural invariants of the result.
func (r ScanResult) Validate() error {
	if len(r.Energy) == 0 {
		return fmt.Errorf("%w: empty energy grid", ErrMalformedResult)
	}
	for i := 1; i < len(r.Energy); i++ {
		if r.Energy[i] <= r.Energy[i-1] {
			return fmt.Errorf("%w: energy grid not strictly increasing at index %d", ErrMalformedResult, i)
		}
	}
	for q, xs := range r.CrossSection {
		if len(xs) != len(r.Energy) {
			return fmt.Errorf("%w: cross-section row %d has %d samples, want %d",
				ErrMalformedResult, q, len(xs), len(r.Energy))
		}
	}
	return nil
}

// NamedSeries is one plot-ready trace: a label plus paired x/y
// samples. The unit exchanged with the display layer.
type NamedSeries struct {
	Label string    `json:"label"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

// Figure is an ordered list of NamedSeries, one per charge state in
// ascending charge-state order.
type Figure []NamedSeries

// ChargeStateLabel renders the conventional "q+" label for a charge
// state, matching the trace names of the original dashboard.
func ChargeStateLabel(q int) string {
	return strconv.Itoa(q) + "+"
}

// FromScan converts a scan result into a figure without any
// renormalization; cross sections are meaningful in absolute units.
func FromScan(res ScanResult) (Figure, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	fig := make(Figure, len(res.CrossSection))
	for q, xs := range res.CrossSection {
		fig[q] = NamedSeries{
			Label: ChargeStateLabel(q),
			X:     res.Energy,
			Y:     xs,
		}
	}
	return fig, nil
}
