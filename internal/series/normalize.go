package series

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// minPopulationTotal is the smallest per-step population sum accepted
// for division. Sums at or below this are treated as "no particles".
const minPopulationTotal = 1e-12

// NormalizationError reports time steps whose population sum was zero
// or numerically indistinguishable from zero. It is non-fatal: the
// figure returned alongside it is complete, with the affected samples
// zero-filled (see Normalize).
type NormalizationError struct {
	Steps []int // affected time-step indices, ascending
}

func (e *NormalizationError) Error() string {
	if len(e.Steps) == 1 {
		return fmt.Sprintf("zero population sum at time step %d", e.Steps[0])
	}
	var b strings.Builder
	for i, s := range e.Steps {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d", s)
		if i == 7 && len(e.Steps) > 8 {
			fmt.Fprintf(&b, " and %d more", len(e.Steps)-8)
			break
		}
	}
	return fmt.Sprintf("zero population sum at %d time steps (%s)", len(e.Steps), b.String())
}

// Normalize converts raw per-charge-state populations into fractional
// abundances: y[q][t] = population[q][t] / sum_q population[q][t].
//
// Time steps whose population sum is zero (or below
// minPopulationTotal) are zero-filled for every charge state and
// reported through a *NormalizationError; the rest of the figure is
// unaffected. Zero-filling rather than NaN keeps downstream
// interpolation and peak extraction on finite data. Callers that care
// can inspect the error; callers that only plot can ignore it.
func Normalize(res SimulationResult) (Figure, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}

	totals := make([]float64, len(res.Time))
	for _, pop := range res.Population {
		floats.Add(totals, pop)
	}

	var degraded []int
	fig := make(Figure, len(res.Population))
	for q, pop := range res.Population {
		y := make([]float64, len(pop))
		for t, n := range pop {
			if totals[t] <= minPopulationTotal {
				if q == 0 {
					degraded = append(degraded, t)
				}
				continue // leave y[t] = 0
			}
			y[t] = n / totals[t]
		}
		fig[q] = NamedSeries{
			Label: ChargeStateLabel(q),
			X:     res.Time,
			Y:     y,
		}
	}

	if len(degraded) > 0 {
		return fig, &NormalizationError{Steps: degraded}
	}
	return fig, nil
}
