// Package params canonicalizes raw control inputs into validated,
// hashable simulation and scan requests.
//
// All numeric coercion and domain validation happens here, at the
// boundary. Code downstream of this package never sees a string-typed
// number or an out-of-domain value, and the continuous-injection flag
// is derived exactly once from the raw checkbox selection.
package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Domain limits for the supported elements. Charge-state evolution is
// modelled for helium (Z=2) through dubnium (Z=105).
const (
	SpeciesMin = 2
	SpeciesMax = 105
)

// ContinuousInjectionToken is the selection entry that enables
// continuous neutral injection when present in a raw checkbox list.
const ContinuousInjectionToken = "Active"

// ScanKind identifies a cross-section scan variant.
type ScanKind string

const (
	// ScanIonisation scans electron-impact ionisation cross sections.
	ScanIonisation ScanKind = "ionisation"
	// ScanRecombination scans radiative recombination cross sections.
	ScanRecombination ScanKind = "recombination"
	// ScanDielectronic scans dielectronic recombination cross sections.
	// The only kind that consumes an energy-spread FWHM.
	ScanDielectronic ScanKind = "dielectronic-recombination"
)

// ScanKinds lists all valid scan kinds in a stable order.
var ScanKinds = []ScanKind{ScanIonisation, ScanRecombination, ScanDielectronic}

// InvalidParameterError reports a raw input outside its declared
// domain. It is returned before any computation is attempted; a
// request that fails canonicalization never reaches a cache or the
// simulation collaborator.
type InvalidParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

// SimulationRequest is the canonical, immutable key for one
// charge-state evolution run. Two requests are equal iff all fields
// compare equal under exact numeric equality, so the struct is usable
// directly as a cache key.
type SimulationRequest struct {
	Species             int     // nuclear charge Z, in [SpeciesMin, SpeciesMax]
	CurrentDensity      float64 // A/cm^2, > 0
	BeamEnergy          float64 // eV, > 0
	DRFwhm              float64 // eV, >= 0; 0 disables dielectronic recombination
	BreedTime           float64 // s, > 0
	ContinuousInjection bool
}

// Validate checks every field against its domain.
func (r SimulationRequest) Validate() error {
	if r.Species < SpeciesMin || r.Species > SpeciesMax {
		return &InvalidParameterError{Field: "species", Value: r.Species,
			Reason: fmt.Sprintf("must be in [%d, %d]", SpeciesMin, SpeciesMax)}
	}
	if !(r.CurrentDensity > 0) {
		return &InvalidParameterError{Field: "currentDensity", Value: r.CurrentDensity,
			Reason: "must be > 0"}
	}
	if !(r.BeamEnergy > 0) {
		return &InvalidParameterError{Field: "beamEnergy", Value: r.BeamEnergy,
			Reason: "must be > 0"}
	}
	if !(r.DRFwhm >= 0) {
		return &InvalidParameterError{Field: "drFwhm", Value: r.DRFwhm,
			Reason: "must be >= 0"}
	}
	if !(r.BreedTime > 0) {
		return &InvalidParameterError{Field: "breedTime", Value: r.BreedTime,
			Reason: "must be > 0"}
	}
	return nil
}

// CacheKey returns a canonical string form of the request. Floats are
// rendered with strconv 'g' shortest form, so two requests share a key
// iff their fields are exactly equal.
func (r SimulationRequest) CacheKey() string {
	var b strings.Builder
	b.WriteString("sim|z=")
	b.WriteString(strconv.Itoa(r.Species))
	b.WriteString("|j=")
	b.WriteString(formatFloat(r.CurrentDensity))
	b.WriteString("|e=")
	b.WriteString(formatFloat(r.BeamEnergy))
	b.WriteString("|fwhm=")
	b.WriteString(formatFloat(r.DRFwhm))
	b.WriteString("|t=")
	b.WriteString(formatFloat(r.BreedTime))
	b.WriteString("|cni=")
	b.WriteString(strconv.FormatBool(r.ContinuousInjection))
	return b.String()
}

// ScanRequest is the canonical key for one cross-section energy scan.
type ScanRequest struct {
	Species     int
	Kind        ScanKind
	FWHM        float64 // eV; meaningful for ScanDielectronic only
	SampleCount int     // number of energy grid points, > 0
}

// Validate checks every field against its domain.
func (r ScanRequest) Validate() error {
	if r.Species < SpeciesMin || r.Species > SpeciesMax {
		return &InvalidParameterError{Field: "species", Value: r.Species,
			Reason: fmt.Sprintf("must be in [%d, %d]", SpeciesMin, SpeciesMax)}
	}
	switch r.Kind {
	case ScanIonisation, ScanRecombination, ScanDielectronic:
	default:
		return &InvalidParameterError{Field: "kind", Value: r.Kind,
			Reason: "must be one of ionisation, recombination, dielectronic-recombination"}
	}
	if !(r.FWHM >= 0) {
		return &InvalidParameterError{Field: "fwhm", Value: r.FWHM,
			Reason: "must be >= 0"}
	}
	if r.Kind != ScanDielectronic && r.FWHM != 0 {
		return &InvalidParameterError{Field: "fwhm", Value: r.FWHM,
			Reason: "only valid for dielectronic-recombination scans"}
	}
	if r.SampleCount <= 0 {
		return &InvalidParameterError{Field: "sampleCount", Value: r.SampleCount,
			Reason: "must be > 0"}
	}
	return nil
}

// CacheKey returns a canonical string form of the request.
func (r ScanRequest) CacheKey() string {
	var b strings.Builder
	b.WriteString("scan|kind=")
	b.WriteString(string(r.Kind))
	b.WriteString("|z=")
	b.WriteString(strconv.Itoa(r.Species))
	b.WriteString("|fwhm=")
	b.WriteString(formatFloat(r.FWHM))
	b.WriteString("|n=")
	b.WriteString(strconv.Itoa(r.SampleCount))
	return b.String()
}

// RawSimulation carries simulation inputs exactly as a control surface
// produced them: numbers may arrive as strings, floats or ints, and
// the continuous-injection flag arrives as a checkbox selection list.
type RawSimulation struct {
	Species        any
	CurrentDensity any
	BeamEnergy     any
	DRFwhm         any
	BreedTime      any
	Selection      []string
}

// CanonicalizeSimulation coerces and validates raw inputs into a
// SimulationRequest. On failure the returned error is an
// *InvalidParameterError and the zero request must not be used.
func CanonicalizeSimulation(raw RawSimulation) (SimulationRequest, error) {
	var req SimulationRequest

	z, err := coerceInt("species", raw.Species)
	if err != nil {
		return req, err
	}
	j, err := coerceFloat("currentDensity", raw.CurrentDensity)
	if err != nil {
		return req, err
	}
	e, err := coerceFloat("beamEnergy", raw.BeamEnergy)
	if err != nil {
		return req, err
	}
	fwhm, err := coerceFloat("drFwhm", raw.DRFwhm)
	if err != nil {
		return req, err
	}
	t, err := coerceFloat("breedTime", raw.BreedTime)
	if err != nil {
		return req, err
	}

	req = SimulationRequest{
		Species:             z,
		CurrentDensity:      j,
		BeamEnergy:          e,
		DRFwhm:              fwhm,
		BreedTime:           t,
		ContinuousInjection: hasToken(raw.Selection, ContinuousInjectionToken),
	}
	if err := req.Validate(); err != nil {
		return SimulationRequest{}, err
	}
	return req, nil
}

// RawScan carries cross-section scan inputs as produced by a control
// surface.
type RawScan struct {
	Species     any
	Kind        string
	FWHM        any // ignored unless Kind is dielectronic-recombination
	SampleCount any
}

// CanonicalizeScan coerces and validates raw inputs into a
// ScanRequest. The FWHM is zeroed for kinds that do not consume it so
// that equivalent scans share one cache key.
func CanonicalizeScan(raw RawScan) (ScanRequest, error) {
	var req ScanRequest

	z, err := coerceInt("species", raw.Species)
	if err != nil {
		return req, err
	}
	n, err := coerceInt("sampleCount", raw.SampleCount)
	if err != nil {
		return req, err
	}

	kind := ScanKind(raw.Kind)
	var fwhm float64
	if kind == ScanDielectronic {
		fwhm, err = coerceFloat("fwhm", raw.FWHM)
		if err != nil {
			return req, err
		}
	}

	req = ScanRequest{
		Species:     z,
		Kind:        kind,
		FWHM:        fwhm,
		SampleCount: n,
	}
	if err := req.Validate(); err != nil {
		return ScanRequest{}, err
	}
	return req, nil
}

func hasToken(selection []string, token string) bool {
	for _, s := range selection {
		if s == token {
			return true
		}
	}
	return false
}

func coerceFloat(field string, v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, &InvalidParameterError{Field: field, Value: v, Reason: "not a number"}
		}
		return f, nil
	case nil:
		return 0, &InvalidParameterError{Field: field, Value: v, Reason: "missing"}
	default:
		return 0, &InvalidParameterError{Field: field, Value: v,
			Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func coerceInt(field string, v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, &InvalidParameterError{Field: field, Value: v, Reason: "not an integer"}
		}
		return int(val), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, &InvalidParameterError{Field: field, Value: v, Reason: "not an integer"}
		}
		return i, nil
	case nil:
		return 0, &InvalidParameterError{Field: field, Value: v, Reason: "missing"}
	default:
		return 0, &InvalidParameterError{Field: field, Value: v,
			Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
