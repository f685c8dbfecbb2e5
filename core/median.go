package core

import (
	"quantiledb/percentile"
)

// MedianAccumulator is the percentile engine fixed to p = 0.5 with scalar
// output shaping. Incorporation and merging are inherited unchanged, so
// its partial output is byte-identical to the base engine's.
type MedianAccumulator struct {
	*PercentileAccumulator
}

func NewMedianAccumulator(input string, method percentile.Method, mode Mode, opts ...Option) (*MedianAccumulator, error) {
	request, err := NewQuantileRequest(input, []float64{0.5}, method)
	if err != nil {
		return nil, err
	}
	base, err := NewPercentileAccumulator(request, mode, opts...)
	if err != nil {
		return nil, err
	}
	return &MedianAccumulator{PercentileAccumulator: base}, nil
}

// Finalize returns the scalar median, or null when nothing was observed —
// never a one-element array.
func (acc *MedianAccumulator) Finalize() Value {
	pctls := acc.algo.ComputeQuantiles(acc.request.Ps)
	if len(pctls) == 0 {
		return Null()
	}
	if len(pctls) != 1 {
		panic("the percentile method for median must return a single result")
	}
	return Numeric(pctls[0])
}

// SerializeDefinition omits the quantile list: for a median it is
// implicit.
func (acc *MedianAccumulator) SerializeDefinition() Definition {
	return Definition{
		Input:  acc.request.Input,
		Method: acc.request.Method.String(),
	}
}
