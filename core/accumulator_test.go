package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"quantiledb/percentile"
)

func mustRequest(t *testing.T, ps []float64, method percentile.Method) QuantileRequest {
	request, err := NewQuantileRequest("$value", ps, method)
	assert.Nil(t, err)
	return request
}

func TestNewQuantileRequest_Validation(t *testing.T) {
	_, err := NewQuantileRequest("$value", nil, percentile.Approximate)
	assert.True(t, errors.Is(err, ErrBadValue))

	_, err = NewQuantileRequest("$value", []float64{0.5, 1.1}, percentile.Approximate)
	assert.True(t, errors.Is(err, ErrBadValue))

	_, err = NewQuantileRequest("$value", []float64{-0.1}, percentile.Approximate)
	assert.True(t, errors.Is(err, ErrBadValue))

	_, err = NewQuantileRequest("$value", []float64{0, 0.5, 1}, percentile.Discrete)
	assert.Nil(t, err)
}

func TestPercentileAccumulator_Scenario(t *testing.T) {
	continuous, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5}, percentile.Continuous), ModeLeaf)
	assert.Nil(t, err)
	discrete, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5, 0.9}, percentile.Discrete), ModeLeaf)
	assert.Nil(t, err)

	for _, v := range []float64{1, 2, 3, 4, 5} {
		assert.Nil(t, continuous.Incorporate(Numeric(v)))
		assert.Nil(t, discrete.Incorporate(Numeric(v)))
	}

	assert.Equal(t, continuous.Finalize(), []Value{Numeric(3.0)})
	assert.Equal(t, discrete.Finalize(), []Value{Numeric(3), Numeric(5)})
}

func TestPercentileAccumulator_EmptyShaping(t *testing.T) {
	acc, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.3, 0.7}, percentile.Continuous), ModeLeaf)
	assert.Nil(t, err)

	assert.Equal(t, acc.Finalize(), []Value{Null(), Null()})
}

func TestPercentileAccumulator_NonNumericSkipped(t *testing.T) {
	mixed, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5, 1}, percentile.Discrete), ModeLeaf)
	assert.Nil(t, err)
	clean, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5, 1}, percentile.Discrete), ModeLeaf)
	assert.Nil(t, err)

	numerics := []float64{10, 20, 30, 40, 50}
	junk := []Value{Str("fast"), Null(), Boolean(true)}
	for i, v := range numerics {
		assert.Nil(t, mixed.Incorporate(Numeric(v)))
		if i < len(junk) {
			assert.Nil(t, mixed.Incorporate(junk[i]))
		}
		assert.Nil(t, clean.Incorporate(Numeric(v)))
	}

	assert.Equal(t, mixed.Finalize(), clean.Finalize())
}

func TestPercentileAccumulator_FinalizeIdempotent(t *testing.T) {
	acc, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.25, 0.75}, percentile.Approximate), ModeLeaf)
	assert.Nil(t, err)

	for i := 0; i < 100; i++ {
		assert.Nil(t, acc.Incorporate(Numeric(float64(i))))
	}

	assert.Equal(t, acc.Finalize(), acc.Finalize())
}

func TestPercentileAccumulator_MemoryCeiling(t *testing.T) {
	acc, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5}, percentile.Discrete), ModeLeaf,
		WithMaxMemoryBytes(256))
	assert.Nil(t, err)

	var exhausted error
	for i := 0; i < 1000 && exhausted == nil; i++ {
		exhausted = acc.Incorporate(Numeric(float64(i)))
	}

	assert.NotNil(t, exhausted)
	assert.True(t, errors.Is(exhausted, ErrExceededMemoryLimit))
	assert.Contains(t, exhausted.Error(), "limit: 256 bytes")
	assert.True(t, acc.MemoryUsage().CurrentBytes() > acc.MemoryUsage().MaxAllowedBytes())
}

func TestPercentileAccumulator_DefaultCeiling(t *testing.T) {
	old := DefaultMaxMemoryBytes()
	defer SetDefaultMaxMemoryBytes(old)

	SetDefaultMaxMemoryBytes(4096)
	acc, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5}, percentile.Discrete), ModeLeaf)
	assert.Nil(t, err)
	assert.Equal(t, acc.MemoryUsage().MaxAllowedBytes(), int64(4096))
}

func TestPercentileAccumulator_ModeViolationsPanic(t *testing.T) {
	leaf, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5}, percentile.Discrete), ModeLeaf)
	assert.Nil(t, err)
	assert.Panics(t, func() {
		_ = leaf.Merge([]byte{partialStateVersion, 0, 0, 0, 0, 0})
	})

	merger, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5}, percentile.Discrete), ModeMerge)
	assert.Nil(t, err)
	assert.Panics(t, func() {
		_ = merger.Incorporate(Numeric(1))
	})
}

func TestPercentileAccumulator_ScatterGatherMatchesSingle(t *testing.T) {
	for _, method := range []percentile.Method{percentile.Discrete, percentile.Continuous} {
		request := mustRequest(t, []float64{0.1, 0.5, 0.9}, method)

		single, err := NewPercentileAccumulator(request, ModeLeaf)
		assert.Nil(t, err)
		workerA, err := NewPercentileAccumulator(request, ModeLeaf)
		assert.Nil(t, err)
		workerB, err := NewPercentileAccumulator(request, ModeLeaf)
		assert.Nil(t, err)

		for i := 0; i < 40; i++ {
			v := Numeric(float64(i * 3 % 17))
			assert.Nil(t, single.Incorporate(v))
			if i%2 == 0 {
				assert.Nil(t, workerA.Incorporate(v))
			} else {
				assert.Nil(t, workerB.Incorporate(v))
			}
		}

		partialA, err := workerA.FinalizePartial()
		assert.Nil(t, err)
		partialB, err := workerB.FinalizePartial()
		assert.Nil(t, err)

		mergedAB, err := NewPercentileAccumulator(request, ModeMerge)
		assert.Nil(t, err)
		assert.Nil(t, mergedAB.Merge(partialA))
		assert.Nil(t, mergedAB.Merge(partialB))

		mergedBA, err := NewPercentileAccumulator(request, ModeMerge)
		assert.Nil(t, err)
		assert.Nil(t, mergedBA.Merge(partialB))
		assert.Nil(t, mergedBA.Merge(partialA))

		assert.Equal(t, mergedAB.Finalize(), single.Finalize())
		assert.Equal(t, mergedBA.Finalize(), single.Finalize())
	}
}

func TestPercentileAccumulator_MergeModeCanFinalizePartial(t *testing.T) {
	request := mustRequest(t, []float64{0.5}, percentile.Continuous)

	leaf, err := NewPercentileAccumulator(request, ModeLeaf)
	assert.Nil(t, err)
	for _, v := range []float64{1, 2, 3} {
		assert.Nil(t, leaf.Incorporate(Numeric(v)))
	}
	partial, err := leaf.FinalizePartial()
	assert.Nil(t, err)

	// An intermediate merge destination forwards its own partial upstream.
	mid, err := NewPercentileAccumulator(request, ModeMerge)
	assert.Nil(t, err)
	assert.Nil(t, mid.Merge(partial))
	forwarded, err := mid.FinalizePartial()
	assert.Nil(t, err)

	root, err := NewPercentileAccumulator(request, ModeMerge)
	assert.Nil(t, err)
	assert.Nil(t, root.Merge(forwarded))
	assert.Equal(t, root.Finalize(), []Value{Numeric(2.0)})
}

func TestPercentileAccumulator_Reset(t *testing.T) {
	acc, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5}, percentile.Discrete), ModeLeaf)
	assert.Nil(t, err)

	for i := 0; i < 100; i++ {
		assert.Nil(t, acc.Incorporate(Numeric(float64(i))))
	}
	loaded := acc.MemoryUsage().CurrentBytes()

	assert.Nil(t, acc.Reset())
	assert.Equal(t, acc.Finalize(), []Value{Null()})
	assert.True(t, acc.MemoryUsage().CurrentBytes() < loaded)
}

func TestPercentileAccumulator_NaNSkipped(t *testing.T) {
	acc, err := NewPercentileAccumulator(
		mustRequest(t, []float64{0.5}, percentile.Discrete), ModeLeaf)
	assert.Nil(t, err)

	nan := 0.0
	assert.Nil(t, acc.Incorporate(Numeric(nan/nan)))
	assert.Equal(t, acc.Finalize(), []Value{Null()})
}
