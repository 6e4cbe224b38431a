package physics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebitlab/csevo/internal/params"
)

func defaultRequest() params.SimulationRequest {
	return params.SimulationRequest{
		Species:        20,
		CurrentDensity: 100,
		BeamEnergy:     5000,
		DRFwhm:         50,
		BreedTime:      0.2,
	}
}

func TestRunSimulation_GridEndpointsExact(t *testing.T) {
	engine := NewEngine(WithOutputSteps(50))

	res, err := engine.RunSimulation(context.Background(), defaultRequest())
	require.NoError(t, err)

	require.Len(t, res.Time, 51)
	assert.Equal(t, 0.0, res.Time[0])
	assert.Equal(t, 0.2, res.Time[len(res.Time)-1])
	require.NoError(t, res.Validate())
}

func TestRunSimulation_OneRowPerChargeState(t *testing.T) {
	engine := NewEngine(WithOutputSteps(20))

	res, err := engine.RunSimulation(context.Background(), defaultRequest())
	require.NoError(t, err)

	assert.Len(t, res.Population, 21, "Z=20 has charge states 0..20")
	for q, pop := range res.Population {
		assert.Len(t, pop, len(res.Time), "state %d", q)
	}
}

func TestRunSimulation_ConservesParticlesWithoutInjection(t *testing.T) {
	engine := NewEngine(WithOutputSteps(50))

	res, err := engine.RunSimulation(context.Background(), defaultRequest())
	require.NoError(t, err)

	for step := range res.Time {
		total := 0.0
		for _, pop := range res.Population {
			total += pop[step]
		}
		assert.InDelta(t, 1.0, total, 1e-6, "step %d", step)
	}
}

func TestRunSimulation_InitialStateIsSinglyCharged(t *testing.T) {
	engine := NewEngine(WithOutputSteps(10))

	res, err := engine.RunSimulation(context.Background(), defaultRequest())
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.Population[0][0])
	assert.Equal(t, 1.0, res.Population[1][0])
}

func TestRunSimulation_PopulationsStayNonNegative(t *testing.T) {
	engine := NewEngine(WithOutputSteps(50))

	res, err := engine.RunSimulation(context.Background(), defaultRequest())
	require.NoError(t, err)

	for q, pop := range res.Population {
		for step, v := range pop {
			require.GreaterOrEqual(t, v, 0.0, "state %d step %d", q, step)
		}
	}
}

func TestRunSimulation_ChargeBreedsUpward(t *testing.T) {
	engine := NewEngine(WithOutputSteps(100))

	res, err := engine.RunSimulation(context.Background(), defaultRequest())
	require.NoError(t, err)

	last := len(res.Time) - 1
	// After 200 ms at 100 A/cm^2 the singly charged fraction is long
	// gone and charge has piled up in higher states.
	assert.Less(t, res.Population[1][last], 0.01)

	high := 0.0
	for q := 5; q < len(res.Population); q++ {
		high += res.Population[q][last]
	}
	assert.Greater(t, high, 0.5, "most charge should sit at 5+ and above at the end")
}

func TestRunSimulation_ContinuousInjectionAddsNeutrals(t *testing.T) {
	engine := NewEngine(WithOutputSteps(50))

	req := defaultRequest()
	req.ContinuousInjection = true

	res, err := engine.RunSimulation(context.Background(), req)
	require.NoError(t, err)

	last := len(res.Time) - 1
	total := 0.0
	for _, pop := range res.Population {
		total += pop[last]
	}
	assert.Greater(t, total, 1.5, "injection must grow the total population")
}

func TestRunSimulation_StiffnessBudgetFailsTyped(t *testing.T) {
	engine := NewEngine(WithOutputSteps(100), WithSubStepCap(100))

	_, err := engine.RunSimulation(context.Background(), defaultRequest())
	assert.ErrorIs(t, err, ErrNonConvergent)
}

func TestRunSimulation_RejectsInvalidRequest(t *testing.T) {
	engine := NewEngine()

	req := defaultRequest()
	req.Species = 1

	_, err := engine.RunSimulation(context.Background(), req)
	var perr *params.InvalidParameterError
	assert.ErrorAs(t, err, &perr)
}

func TestRunSimulation_HonorsContextCancellation(t *testing.T) {
	engine := NewEngine(WithOutputSteps(400))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.RunSimulation(ctx, defaultRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanCrossSections_Shapes(t *testing.T) {
	engine := NewEngine()

	for _, kind := range params.ScanKinds {
		req := params.ScanRequest{Species: 10, Kind: kind, SampleCount: 64}
		if kind == params.ScanDielectronic {
			req.FWHM = 50
		}

		res, err := engine.ScanCrossSections(req)
		require.NoError(t, err, "kind %s", kind)
		require.NoError(t, res.Validate(), "kind %s", kind)

		assert.Len(t, res.Energy, 64)
		assert.Len(t, res.CrossSection, 11)
	}
}

func TestScanCrossSections_IonisationThreshold(t *testing.T) {
	engine := NewEngine()

	res, err := engine.ScanCrossSections(params.ScanRequest{
		Species: 10, Kind: params.ScanIonisation, SampleCount: 256,
	})
	require.NoError(t, err)

	// Below the neutral's threshold the cross section is zero, above
	// it is positive; the bare nucleus row is identically zero.
	threshold := bindingEnergy(0)
	for i, e := range res.Energy {
		if e <= threshold {
			assert.Equal(t, 0.0, res.CrossSection[0][i])
		} else {
			assert.Greater(t, res.CrossSection[0][i], 0.0)
		}
		assert.Equal(t, 0.0, res.CrossSection[10][i])
	}
}

func TestScanCrossSections_ZeroFWHMDisablesDR(t *testing.T) {
	engine := NewEngine()

	res, err := engine.ScanCrossSections(params.ScanRequest{
		Species: 10, Kind: params.ScanDielectronic, FWHM: 0, SampleCount: 32,
	})
	require.NoError(t, err)

	for q, row := range res.CrossSection {
		for i, v := range row {
			require.Equal(t, 0.0, v, "state %d sample %d", q, i)
		}
	}
}

func TestScanCrossSections_SingleSample(t *testing.T) {
	engine := NewEngine()

	res, err := engine.ScanCrossSections(params.ScanRequest{
		Species: 5, Kind: params.ScanRecombination, SampleCount: 1,
	})
	require.NoError(t, err)
	assert.Len(t, res.Energy, 1)
}

func TestElementByZ(t *testing.T) {
	testCases := []struct {
		z      int
		symbol string
		name   string
	}{
		{2, "He", "Helium"},
		{20, "Ca", "Calcium"},
		{105, "Db", "Dubnium"},
	}

	for _, tc := range testCases {
		el, err := ElementByZ(tc.z)
		require.NoError(t, err)
		assert.Equal(t, tc.symbol, el.Symbol)
		assert.Equal(t, tc.name, el.Name)
	}

	_, err := ElementByZ(0)
	assert.Error(t, err)
	_, err = ElementByZ(106)
	assert.Error(t, err)
}
