package stats

import (
	"testing"

	"quantiledb/utils"
)

func TestWelford(t *testing.T) {
	welford := NewWelford()

	utils.AssertEqual(t, welford.Mean(), 0.0)
	utils.AssertEqual(t, welford.Variance(), 0.0)
	utils.AssertEqual(t, welford.SampleVariance(), 0.0)

	for i := 1; i < 100; i++ {
		welford.Update(float64(i))
	}

	utils.AssertEqual(t, welford.Count(), uint64(99))
	utils.AssertEqual(t, welford.Mean(), 50.0)
	utils.AssertClose(t, welford.Variance(), 816.666667, 1e-4)
	utils.AssertClose(t, welford.SampleVariance(), 825.0000, 1e-4)
}

func TestWelford_MergeMatchesSinglePass(t *testing.T) {
	single := NewWelford()
	left := NewWelford()
	right := NewWelford()

	for i := 0; i < 250; i++ {
		v := float64(i*i%101) / 3
		single.Update(v)
		if i%2 == 0 {
			left.Update(v)
		} else {
			right.Update(v)
		}
	}

	left.Merge(right)

	utils.AssertEqual(t, left.Count(), single.Count())
	utils.AssertClose(t, left.Mean(), single.Mean(), 1e-9)
	utils.AssertClose(t, left.SampleVariance(), single.SampleVariance(), 1e-9)
}

func TestWelford_MergeIntoEmpty(t *testing.T) {
	empty := NewWelford()
	other := NewWelford()
	for i := 0; i < 10; i++ {
		other.Update(float64(i))
	}

	empty.Merge(other)
	utils.AssertEqual(t, empty.Count(), other.Count())
	utils.AssertEqual(t, empty.Mean(), other.Mean())

	// Merging an empty instance changes nothing.
	before := *other
	other.Merge(NewWelford())
	utils.AssertEqual(t, *other, before)
}
