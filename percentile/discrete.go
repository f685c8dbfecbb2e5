package percentile

import "math"

// Discrete is the exact nearest-rank strategy: every answer is one of the
// observed values, never interpolated.
type discrete struct {
	accurate
}

func NewDiscrete() *discrete {
	return &discrete{}
}

// ComputeQuantiles selects, for each p, the order statistic at rank
// ceil(p*n) on the sorted values, clamped to [1, n].
func (d *discrete) ComputeQuantiles(ps []float64) []float64 {
	if len(d.values) == 0 {
		return nil
	}
	d.sortIfNeeded()
	n := len(d.values)
	out := make([]float64, len(ps))
	for i, p := range ps {
		rank := int(math.Ceil(p * float64(n)))
		if rank < 1 {
			rank = 1
		}
		if rank > n {
			rank = n
		}
		out[i] = d.values[rank-1]
	}
	return out
}
