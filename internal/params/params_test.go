package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeSimulation_Defaults(t *testing.T) {
	// The historical dashboard defaults: calcium at 100 A/cm^2,
	// 5 keV beam, 50 eV FWHM, 200 ms breeding time.
	req, err := CanonicalizeSimulation(RawSimulation{
		Species:        20,
		CurrentDensity: 100.0,
		BeamEnergy:     5000.0,
		DRFwhm:         50.0,
		BreedTime:      0.2,
	})
	require.NoError(t, err)

	assert.Equal(t, 20, req.Species)
	assert.Equal(t, 100.0, req.CurrentDensity)
	assert.Equal(t, 5000.0, req.BeamEnergy)
	assert.Equal(t, 50.0, req.DRFwhm)
	assert.Equal(t, 0.2, req.BreedTime)
	assert.False(t, req.ContinuousInjection)
}

func TestCanonicalizeSimulation_StringCoercion(t *testing.T) {
	req, err := CanonicalizeSimulation(RawSimulation{
		Species:        "20",
		CurrentDensity: " 100 ",
		BeamEnergy:     "5e3",
		DRFwhm:         "0",
		BreedTime:      "0.2",
	})
	require.NoError(t, err)

	assert.Equal(t, 20, req.Species)
	assert.Equal(t, 100.0, req.CurrentDensity)
	assert.Equal(t, 5000.0, req.BeamEnergy)
}

func TestCanonicalizeSimulation_SelectionDerivesFlag(t *testing.T) {
	testCases := []struct {
		name      string
		selection []string
		want      bool
	}{
		{"nil selection", nil, false},
		{"empty selection", []string{}, false},
		{"active present", []string{"Active"}, true},
		{"active among others", []string{"other", "Active"}, true},
		{"unrelated token", []string{"Inactive"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := CanonicalizeSimulation(RawSimulation{
				Species:        20,
				CurrentDensity: 100.0,
				BeamEnergy:     5000.0,
				DRFwhm:         0.0,
				BreedTime:      0.2,
				Selection:      tc.selection,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, req.ContinuousInjection)
		})
	}
}

func TestCanonicalizeSimulation_DomainErrors(t *testing.T) {
	valid := RawSimulation{
		Species:        20,
		CurrentDensity: 100.0,
		BeamEnergy:     5000.0,
		DRFwhm:         50.0,
		BreedTime:      0.2,
	}

	testCases := []struct {
		name   string
		mutate func(*RawSimulation)
		field  string
	}{
		{"species too high", func(r *RawSimulation) { r.Species = 150 }, "species"},
		{"species too low", func(r *RawSimulation) { r.Species = 1 }, "species"},
		{"zero current density", func(r *RawSimulation) { r.CurrentDensity = 0.0 }, "currentDensity"},
		{"negative beam energy", func(r *RawSimulation) { r.BeamEnergy = -5.0 }, "beamEnergy"},
		{"negative fwhm", func(r *RawSimulation) { r.DRFwhm = -1.0 }, "drFwhm"},
		{"zero breed time", func(r *RawSimulation) { r.BreedTime = 0.0 }, "breedTime"},
		{"non-numeric species", func(r *RawSimulation) { r.Species = "helium" }, "species"},
		{"fractional species", func(r *RawSimulation) { r.Species = 20.5 }, "species"},
		{"missing current density", func(r *RawSimulation) { r.CurrentDensity = nil }, "currentDensity"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := valid
			tc.mutate(&raw)

			_, err := CanonicalizeSimulation(raw)
			require.Error(t, err)

			var perr *InvalidParameterError
			require.True(t, errors.As(err, &perr), "expected *InvalidParameterError, got %T", err)
			assert.Equal(t, tc.field, perr.Field)
		})
	}
}

func TestCanonicalizeScan(t *testing.T) {
	req, err := CanonicalizeScan(RawScan{
		Species:     20,
		Kind:        "dielectronic-recombination",
		FWHM:        50.0,
		SampleCount: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, ScanDielectronic, req.Kind)
	assert.Equal(t, 50.0, req.FWHM)

	// FWHM is dropped for kinds that do not consume it, so equivalent
	// scans share a cache key.
	req, err = CanonicalizeScan(RawScan{
		Species:     20,
		Kind:        "ionisation",
		FWHM:        50.0,
		SampleCount: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, req.FWHM)
}

func TestCanonicalizeScan_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		raw   RawScan
		field string
	}{
		{
			"unknown kind",
			RawScan{Species: 20, Kind: "charge-exchange", SampleCount: 10},
			"kind",
		},
		{
			"zero samples",
			RawScan{Species: 20, Kind: "ionisation", SampleCount: 0},
			"sampleCount",
		},
		{
			"negative fwhm",
			RawScan{Species: 20, Kind: "dielectronic-recombination", FWHM: -1.0, SampleCount: 10},
			"fwhm",
		},
		{
			"species out of range",
			RawScan{Species: 106, Kind: "ionisation", SampleCount: 10},
			"species",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CanonicalizeScan(tc.raw)
			var perr *InvalidParameterError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.field, perr.Field)
		})
	}
}

func TestCacheKey_DistinguishesRequests(t *testing.T) {
	base := SimulationRequest{
		Species: 20, CurrentDensity: 100, BeamEnergy: 5000,
		DRFwhm: 50, BreedTime: 0.2,
	}

	other := base
	other.ContinuousInjection = true
	assert.NotEqual(t, base.CacheKey(), other.CacheKey())

	other = base
	other.BeamEnergy = 5000.0000001
	assert.NotEqual(t, base.CacheKey(), other.CacheKey())

	same := base
	assert.Equal(t, base.CacheKey(), same.CacheKey())
}

func TestScanCacheKey_IncludesKind(t *testing.T) {
	ion := ScanRequest{Species: 20, Kind: ScanIonisation, SampleCount: 100}
	rec := ScanRequest{Species: 20, Kind: ScanRecombination, SampleCount: 100}
	assert.NotEqual(t, ion.CacheKey(), rec.CacheKey())
}
