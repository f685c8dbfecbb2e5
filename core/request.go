package core

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"quantiledb/percentile"
)

// Process-wide default ceiling for one accumulator, consulted when the
// caller does not supply an explicit limit.
var defaultMaxMemoryBytes = atomic.NewInt64(100 * 1024 * 1024)

func DefaultMaxMemoryBytes() int64 {
	return defaultMaxMemoryBytes.Load()
}

func SetDefaultMaxMemoryBytes(bytes int64) {
	defaultMaxMemoryBytes.Store(bytes)
}

// QuantileRequest binds the operator's defining arguments: the input
// expression descriptor, the requested quantiles and the method. Immutable
// once an accumulator is constructed. Ps is neither sorted nor
// deduplicated; output order mirrors it.
type QuantileRequest struct {
	Input  string
	Ps     []float64
	Method percentile.Method
}

// NewQuantileRequest validates once, at the construction boundary. Compute
// paths never re-check.
func NewQuantileRequest(input string, ps []float64, method percentile.Method) (QuantileRequest, error) {
	if len(ps) == 0 {
		return QuantileRequest{}, errors.Wrap(ErrBadValue,
			"'p' must be a non-empty array of numbers from [0.0, 1.0]")
	}
	for _, p := range ps {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return QuantileRequest{}, errors.Wrapf(ErrBadValue,
				"'p' values must be numbers from [0.0, 1.0], found: %v", p)
		}
	}
	return QuantileRequest{
		Input:  input,
		Ps:     append([]float64(nil), ps...),
		Method: method,
	}, nil
}
