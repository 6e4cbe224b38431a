package series

import (
	"fmt"
	"sort"
)

// EmptySeriesError reports a derivation over a series with no samples.
type EmptySeriesError struct {
	Label string
}

func (e *EmptySeriesError) Error() string {
	if e.Label == "" {
		return "empty series"
	}
	return fmt.Sprintf("empty series %q", e.Label)
}

// SamplePoint is one interpolated value for one charge state.
type SamplePoint struct {
	ChargeState int     `json:"chargeState"`
	Value       float64 `json:"value"`
}

// SliceAtTime linearly interpolates every series of a figure at the
// query time, returning one value per charge state in figure order.
//
// Query times below a series' first sample clamp to the first y value;
// times above the last sample clamp to the last. There is no
// extrapolation. Each series is interpolated against its own x grid,
// so figures with heterogeneous grids work too.
func SliceAtTime(fig Figure, t float64) ([]SamplePoint, error) {
	points := make([]SamplePoint, len(fig))
	for q, s := range fig {
		v, err := interpolate(s, t)
		if err != nil {
			return nil, err
		}
		points[q] = SamplePoint{ChargeState: q, Value: v}
	}
	return points, nil
}

func interpolate(s NamedSeries, t float64) (float64, error) {
	n := len(s.X)
	if n == 0 {
		return 0, &EmptySeriesError{Label: s.Label}
	}
	if len(s.Y) != n {
		return 0, fmt.Errorf("%w: series %q has %d x but %d y samples",
			ErrMalformedResult, s.Label, n, len(s.Y))
	}

	if t <= s.X[0] {
		return s.Y[0], nil
	}
	if t >= s.X[n-1] {
		return s.Y[n-1], nil
	}

	// First index with x >= t; the bracket is [hi-1, hi].
	hi := sort.SearchFloat64s(s.X, t)
	if s.X[hi] == t {
		return s.Y[hi], nil
	}
	lo := hi - 1
	frac := (t - s.X[lo]) / (s.X[hi] - s.X[lo])
	return s.Y[lo] + frac*(s.Y[hi]-s.Y[lo]), nil
}
