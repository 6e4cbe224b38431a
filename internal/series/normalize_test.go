package series

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_FractionsSumToOne(t *testing.T) {
	res := SimulationResult{
		Time: []float64{0, 0.1, 0.2, 0.3},
		Population: [][]float64{
			{10, 5, 1, 0.5},
			{0, 5, 8, 4},
			{0, 0, 1, 5.5},
		},
	}

	fig, err := Normalize(res)
	require.NoError(t, err)
	require.Len(t, fig, 3)

	for step := range res.Time {
		sum := 0.0
		for _, s := range fig {
			sum += s.Y[step]
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "step %d", step)
	}

	// Spot check: at t=0 all particles are in state 0.
	assert.Equal(t, 1.0, fig[0].Y[0])
	assert.Equal(t, 0.0, fig[1].Y[0])
}

func TestNormalize_LabelsAscendByChargeState(t *testing.T) {
	res := SimulationResult{
		Time:       []float64{0, 1},
		Population: [][]float64{{1, 1}, {1, 1}, {1, 1}},
	}

	fig, err := Normalize(res)
	require.NoError(t, err)

	assert.Equal(t, "0+", fig[0].Label)
	assert.Equal(t, "1+", fig[1].Label)
	assert.Equal(t, "2+", fig[2].Label)
}

func TestNormalize_ZeroSumStepDegradesOnlyThatSample(t *testing.T) {
	res := SimulationResult{
		Time: []float64{0, 1, 2},
		Population: [][]float64{
			{2, 0, 3},
			{2, 0, 1},
		},
	}

	fig, err := Normalize(res)
	require.Error(t, err)

	var nerr *NormalizationError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, []int{1}, nerr.Steps)

	// The figure is still complete; the degraded step is zero-filled
	// and the remaining steps are untouched.
	require.Len(t, fig, 2)
	assert.Equal(t, 0.5, fig[0].Y[0])
	assert.Equal(t, 0.0, fig[0].Y[1])
	assert.Equal(t, 0.0, fig[1].Y[1])
	assert.Equal(t, 0.75, fig[0].Y[2])
	assert.Equal(t, 0.25, fig[1].Y[2])
}

func TestNormalize_RejectsMalformedResults(t *testing.T) {
	testCases := []struct {
		name string
		res  SimulationResult
	}{
		{
			"empty time grid",
			SimulationResult{Population: [][]float64{{1}}},
		},
		{
			"non-increasing time",
			SimulationResult{Time: []float64{0, 1, 1}, Population: [][]float64{{1, 1, 1}}},
		},
		{
			"ragged population row",
			SimulationResult{Time: []float64{0, 1}, Population: [][]float64{{1, 1}, {1}}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.res)
			assert.ErrorIs(t, err, ErrMalformedResult)
		})
	}
}

func TestFromScan(t *testing.T) {
	res := ScanResult{
		Energy: []float64{100, 200, 400},
		CrossSection: [][]float64{
			{1e-18, 2e-18, 1.5e-18},
			{0, 1e-19, 3e-19},
		},
	}

	fig, err := FromScan(res)
	require.NoError(t, err)
	require.Len(t, fig, 2)

	// Cross sections are absolute; no renormalization happens.
	assert.Equal(t, res.CrossSection[0], fig[0].Y)
	assert.Equal(t, res.Energy, fig[1].X)
	assert.Equal(t, "1+", fig[1].Label)
}

func TestFromScan_RejectsNonIncreasingEnergy(t *testing.T) {
	_, err := FromScan(ScanResult{
		Energy:       []float64{100, 50},
		CrossSection: [][]float64{{1, 2}},
	})
	assert.ErrorIs(t, err, ErrMalformedResult)
}
