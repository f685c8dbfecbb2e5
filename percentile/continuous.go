package percentile

import "math"

// Continuous is the exact interpolated strategy.
type continuous struct {
	accurate
}

func NewContinuous() *continuous {
	return &continuous{}
}

// ComputeQuantiles places each p at the real index p*(n-1) on the sorted
// values and linearly interpolates between the two bracketing ranks. An
// integral index (or n = 1) degenerates to the single element.
func (c *continuous) ComputeQuantiles(ps []float64) []float64 {
	if len(c.values) == 0 {
		return nil
	}
	c.sortIfNeeded()
	n := len(c.values)
	out := make([]float64, len(ps))
	for i, p := range ps {
		rank := p * float64(n-1)
		lower := int(math.Floor(rank))
		upper := lower + 1
		if upper > n-1 {
			upper = n - 1
		}
		weight := rank - math.Floor(rank)
		out[i] = c.values[lower]*(1-weight) + c.values[upper]*weight
	}
	return out
}
