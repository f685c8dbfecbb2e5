package core

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"quantiledb/percentile"
)

// Mode fixes, for the whole lifetime of an instance, whether it consumes
// raw values (leaf) or serialized partial states (merge). Mixing the two
// on one instance is a caller bug and panics.
type Mode int

const (
	ModeLeaf Mode = iota
	ModeMerge
)

// Counted on top of the strategy's reported footprint, standing in for the
// accumulator struct itself.
const accumulatorBaseBytes = 128

type options struct {
	maxMemoryBytes int64
}

type Option func(*options)

// WithMaxMemoryBytes overrides the process-wide default ceiling for one
// instance.
func WithMaxMemoryBytes(bytes int64) Option {
	return func(o *options) {
		o.maxMemoryBytes = bytes
	}
}

// PercentileAccumulator drives one strategy instance across its lifecycle:
// incorporate or merge, finalize, reset. It owns the strategy outright;
// nothing is shared between instances, so no locking happens here. One
// instance belongs to one pipeline worker.
type PercentileAccumulator struct {
	request QuantileRequest
	mode    Mode
	algo    percentile.Algorithm
	// The merge capability, resolved once at construction. nil means the
	// strategy cannot combine partial states.
	partial percentile.PartialAlgorithm
	tracker *MemoryUsageTracker
}

func NewPercentileAccumulator(request QuantileRequest, mode Mode, opts ...Option) (*PercentileAccumulator, error) {
	o := options{maxMemoryBytes: DefaultMaxMemoryBytes()}
	for _, opt := range opts {
		opt(&o)
	}

	algo, err := percentile.New(request.Method)
	if err != nil {
		return nil, err
	}
	partial, _ := algo.(percentile.PartialAlgorithm)
	if mode == ModeMerge && partial == nil {
		panic(fmt.Sprintf(
			"merge-mode accumulator requested for non-mergeable method %q",
			request.Method))
	}

	acc := &PercentileAccumulator{
		request: request,
		mode:    mode,
		algo:    algo,
		partial: partial,
		tracker: NewMemoryUsageTracker(o.maxMemoryBytes),
	}
	acc.tracker.Set(accumulatorBaseBytes + int64(algo.MemoryUsageBytes()))
	return acc, nil
}

func (acc *PercentileAccumulator) Request() QuantileRequest {
	return acc.request
}

func (acc *PercentileAccumulator) Mode() Mode {
	return acc.mode
}

func (acc *PercentileAccumulator) MemoryUsage() *MemoryUsageTracker {
	return acc.tracker
}

// Incorporate feeds one raw value. Non-numeric values and NaN are not
// observations and are skipped silently.
func (acc *PercentileAccumulator) Incorporate(v Value) error {
	if acc.mode != ModeLeaf {
		panic("merge-mode percentile accumulator was fed a raw value")
	}
	if !v.IsNumeric() || math.IsNaN(v.Float64()) {
		return nil
	}
	acc.algo.Incorporate(v.Float64())
	return acc.checkMemoryUsage()
}

// Merge combines a partial state produced by FinalizePartial on another
// instance with the same method.
func (acc *PercentileAccumulator) Merge(state []byte) error {
	if acc.mode != ModeMerge {
		panic("leaf-mode percentile accumulator was fed a partial state")
	}
	method, payload, err := decodePartialState(state)
	if err != nil {
		return err
	}
	if method != acc.request.Method {
		panic(fmt.Sprintf(
			"partial state for method %q merged into a %q accumulator",
			method, acc.request.Method))
	}
	if err := acc.partial.Combine(payload); err != nil {
		return err
	}
	return acc.checkMemoryUsage()
}

func (acc *PercentileAccumulator) checkMemoryUsage() error {
	acc.tracker.Set(accumulatorBaseBytes + int64(acc.algo.MemoryUsageBytes()))
	if !acc.tracker.WithinLimit() {
		return errors.Wrapf(ErrExceededMemoryLimit,
			"used: %d bytes, limit: %d bytes",
			acc.tracker.CurrentBytes(), acc.tracker.MaxAllowedBytes())
	}
	return nil
}

// FinalizePartial serializes the current state for merging further up the
// tree. No output shaping is applied.
func (acc *PercentileAccumulator) FinalizePartial() ([]byte, error) {
	if acc.partial == nil {
		panic(fmt.Sprintf(
			"partial state requested from non-mergeable method %q",
			acc.request.Method))
	}
	payload, err := acc.partial.SerializePartial()
	if err != nil {
		return nil, err
	}
	return encodePartialState(acc.request.Method, payload), nil
}

// Finalize computes the requested quantiles and applies percentile
// shaping: one null per requested p when nothing was observed, otherwise
// the computed values in requested order. Idempotent between updates.
func (acc *PercentileAccumulator) Finalize() []Value {
	return formatPercentileResult(len(acc.request.Ps),
		acc.algo.ComputeQuantiles(acc.request.Ps))
}

func formatPercentileResult(nRequested int, pctls []float64) []Value {
	if len(pctls) == 0 {
		nulls := make([]Value, nRequested)
		for i := range nulls {
			nulls[i] = Null()
		}
		return nulls
	}
	out := make([]Value, len(pctls))
	for i, v := range pctls {
		out[i] = Numeric(v)
	}
	return out
}

// Reset rebuilds a fresh strategy for the same request and ceiling,
// discarding all accumulated state. Used when the pipeline recycles an
// instance across group boundaries.
func (acc *PercentileAccumulator) Reset() error {
	algo, err := percentile.New(acc.request.Method)
	if err != nil {
		return err
	}
	acc.algo = algo
	acc.partial, _ = algo.(percentile.PartialAlgorithm)
	acc.tracker.Set(accumulatorBaseBytes + int64(algo.MemoryUsageBytes()))
	return nil
}

// SerializeDefinition re-emits the operator's defining arguments for
// explain, plan-cache and query-shape consumption. It carries no
// accumulated data.
func (acc *PercentileAccumulator) SerializeDefinition() Definition {
	return Definition{
		Input:  acc.request.Input,
		Ps:     append([]float64(nil), acc.request.Ps...),
		Method: acc.request.Method.String(),
	}
}
