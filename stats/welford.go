// Package stats provides the mergeable running statistics the aggregation
// stage reports next to its quantile estimates.
package stats

import "math"

// Welford tracks running mean and variance of one worker's observations.
// Two instances combine with the parallel rule, so scattered workers can
// produce exact global statistics without replaying values.
type Welford struct {
	count uint64
	mean  float64
	m2    float64
}

func NewWelford() *Welford {
	return &Welford{}
}

func (w *Welford) Update(value float64) {
	w.count++
	delta := value - w.mean
	w.mean += delta / float64(w.count)
	delta2 := value - w.mean
	w.m2 += delta * delta2
}

// Merge folds another instance into this one. The other instance is left
// untouched.
func (w *Welford) Merge(other *Welford) {
	if other.count == 0 {
		return
	}
	if w.count == 0 {
		w.count = other.count
		w.mean = other.mean
		w.m2 = other.m2
		return
	}
	total := w.count + other.count
	delta := other.mean - w.mean
	w.m2 += other.m2 +
		delta*delta*float64(w.count)*float64(other.count)/float64(total)
	w.mean += delta * float64(other.count) / float64(total)
	w.count = total
}

func (w *Welford) Count() uint64 {
	return w.count
}

func (w *Welford) Mean() float64 {
	return w.mean
}

func (w *Welford) Variance() float64 {
	if w.count < 2 {
		return 0
	}
	return w.m2 / float64(w.count)
}

func (w *Welford) SampleVariance() float64 {
	if w.count < 2 {
		return 0
	}
	return w.m2 / float64(w.count-1)
}

func (w *Welford) SD() float64 {
	return math.Sqrt(w.SampleVariance())
}
