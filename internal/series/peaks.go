package series

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// PeakPoint is the time of maximal abundance for one charge state.
type PeakPoint struct {
	ChargeState int     `json:"chargeState"`
	Time        float64 `json:"time"`
}

// PeakTimes returns, for every series of a figure, the x value at the
// index of the maximal y value, in figure order. Ties resolve to the
// first (lowest-index) occurrence.
func PeakTimes(fig Figure) ([]PeakPoint, error) {
	peaks := make([]PeakPoint, len(fig))
	for q, s := range fig {
		if len(s.X) == 0 {
			return nil, &EmptySeriesError{Label: s.Label}
		}
		if len(s.Y) != len(s.X) {
			return nil, fmt.Errorf("%w: series %q has %d x but %d y samples",
				ErrMalformedResult, s.Label, len(s.X), len(s.Y))
		}
		// floats.MaxIdx returns the first index on ties.
		peaks[q] = PeakPoint{ChargeState: q, Time: s.X[floats.MaxIdx(s.Y)]}
	}
	return peaks, nil
}
