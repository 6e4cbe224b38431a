package physics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ebitlab/csevo/internal/params"
	"github.com/ebitlab/csevo/internal/series"
)

// Deliberately simplified cross-section models. The shapes follow the
// standard semi-empirical forms (Lotz ionisation, 1/E radiative
// recombination, Gaussian dielectronic resonances) with hydrogen-like
// effective binding energies, which keeps the pipeline exercised with
// physically plausible curves without shipping shell-structure tables.
const (
	rydbergEV = 13.605693 // eV

	// Lotz constant for a single effective shell, cm^2 eV^2.
	lotzA = 4.5e-14

	// Radiative recombination scale, cm^2.
	rrScale = 2.1e-22

	// Dielectronic resonance strength, cm^2 eV.
	drStrength = 1e-17

	fwhmToSigma = 2.3548200450309493 // 2*sqrt(2*ln 2)
)

// bindingEnergy is the hydrogen-like ionisation threshold for charge
// state q of element Z: removing the next electron from an ion of
// charge q costs roughly Ry*(q+1)^2.
func bindingEnergy(q int) float64 {
	qq := float64(q + 1)
	return rydbergEV * qq * qq
}

// ionisationXS is the single-shell Lotz cross section for electron
// impact ionisation q -> q+1 at electron energy e (eV), in cm^2.
// Zero below threshold and for the bare nucleus.
func ionisationXS(z, q int, e float64) float64 {
	if q >= z {
		return 0
	}
	p := bindingEnergy(q)
	if e <= p {
		return 0
	}
	return lotzA * math.Log(e/p) / (e * p)
}

// recombinationXS is a simplified radiative recombination cross
// section q -> q-1, in cm^2. Scales with q^2 and falls off as 1/E.
func recombinationXS(q int, e float64) float64 {
	if q < 1 || e <= 0 {
		return 0
	}
	qq := float64(q)
	return rrScale * qq * qq * rydbergEV / e
}

// dielectronicXS is a single Gaussian resonance per charge state,
// q -> q-1, in cm^2. The resonance sits below the ionisation
// threshold of the recombined state; fwhm == 0 disables the process.
func dielectronicXS(q int, e, fwhm float64) float64 {
	if q < 1 || fwhm <= 0 {
		return 0
	}
	center := 0.7 * bindingEnergy(q-1)
	sigma := fwhm / fwhmToSigma
	d := (e - center) / sigma
	return drStrength / (sigma * math.Sqrt(2*math.Pi)) * math.Exp(-0.5*d*d) * float64(q)
}

// ScanCrossSections evaluates the cross-section model of the requested
// kind for every charge state of the species over a log-spaced energy
// grid. The grid spans [1 eV, 4x the highest ionisation threshold].
func (e *Engine) ScanCrossSections(req params.ScanRequest) (series.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return series.ScanResult{}, err
	}

	z := req.Species
	lo, hi := 1.0, 4.0*bindingEnergy(z-1)

	energy := make([]float64, req.SampleCount)
	if req.SampleCount == 1 {
		energy[0] = hi
	} else {
		floats.LogSpan(energy, lo, hi)
	}

	xs := make([][]float64, z+1)
	for q := 0; q <= z; q++ {
		row := make([]float64, len(energy))
		for i, en := range energy {
			switch req.Kind {
			case params.ScanIonisation:
				row[i] = ionisationXS(z, q, en)
			case params.ScanRecombination:
				row[i] = recombinationXS(q, en)
			case params.ScanDielectronic:
				row[i] = dielectronicXS(q, en, req.FWHM)
			}
		}
		xs[q] = row
	}

	return series.ScanResult{Energy: energy, CrossSection: xs}, nil
}
