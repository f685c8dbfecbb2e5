// Package percentile implements the quantile estimation strategies used by
// the percentile and median accumulators: a mergeable t-digest sketch and
// two exact order-statistic variants over retained raw values.
package percentile

import "github.com/pkg/errors"

// Algorithm is the contract every strategy satisfies. An instance is owned
// by exactly one accumulator and is never shared between goroutines.
type Algorithm interface {
	// Incorporate adds one numeric observation.
	Incorporate(value float64)

	// MemoryUsageBytes reports the current footprint of the internal
	// state. The owning accumulator re-reads it after every update.
	MemoryUsageBytes() int

	// ComputeQuantiles answers the full requested list in input order.
	// It returns nil when nothing has been observed, and is idempotent
	// between incorporations.
	ComputeQuantiles(ps []float64) []float64
}

// PartialAlgorithm is the capability needed for distributed evaluation:
// the state can leave as bytes and two independently accumulated states
// can be combined without replaying raw inputs.
type PartialAlgorithm interface {
	Algorithm

	SerializePartial() ([]byte, error)
	Combine(partial []byte) error
}

func New(method Method) (Algorithm, error) {
	switch method {
	case Approximate:
		return NewTDigest()
	case Discrete:
		return NewDiscrete(), nil
	case Continuous:
		return NewContinuous(), nil
	}
	return nil, errors.Errorf("no algorithm for percentile method %d", method)
}

// All three strategies support the partial-state hand-off.
var (
	_ PartialAlgorithm = (*TDigest)(nil)
	_ PartialAlgorithm = (*discrete)(nil)
	_ PartialAlgorithm = (*continuous)(nil)
)
