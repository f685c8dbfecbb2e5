package percentile

import (
	"bytes"

	"github.com/caio/go-tdigest"
	"github.com/pkg/errors"
)

// Compression of the underlying digest. Rank error stays bounded across
// repeated merges, which is what makes this the safe default method for
// groups of unbounded cardinality.
const tdigestCompression = 1000

const (
	// mean + weight per centroid.
	centroidBytes = 16
	// Fixed cost of the digest struct and its buffers.
	tdigestBaseBytes = 64
)

// TDigest is the approximate strategy: a compact mergeable sketch whose
// memory grows sub-linearly in the observation count.
type TDigest struct {
	digest *tdigest.TDigest
}

func NewTDigest() (*TDigest, error) {
	digest, err := tdigest.New(tdigest.Compression(tdigestCompression))
	if err != nil {
		return nil, errors.Wrap(err, "create t-digest")
	}
	return &TDigest{digest: digest}, nil
}

func (t *TDigest) Incorporate(value float64) {
	// Add only rejects NaN, which the accumulator filters out first.
	_ = t.digest.Add(value)
}

func (t *TDigest) MemoryUsageBytes() int {
	centroids := 0
	t.digest.ForEachCentroid(func(mean float64, count uint64) bool {
		centroids++
		return true
	})
	return tdigestBaseBytes + centroids*centroidBytes
}

func (t *TDigest) ComputeQuantiles(ps []float64) []float64 {
	if t.digest.Count() == 0 {
		return nil
	}
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = t.digest.Quantile(p)
	}
	return out
}

// SerializePartial emits the digest's own binary encoding; the raw inputs
// are never reconstructed.
func (t *TDigest) SerializePartial() ([]byte, error) {
	buf, err := t.digest.AsBytes()
	if err != nil {
		return nil, errors.Wrap(err, "serialize t-digest")
	}
	return buf, nil
}

func (t *TDigest) Combine(partial []byte) error {
	other, err := tdigest.FromBytes(bytes.NewReader(partial))
	if err != nil {
		return errors.Wrap(err, "decode t-digest partial")
	}
	if err := t.digest.Merge(other); err != nil {
		return errors.Wrap(err, "merge t-digest partial")
	}
	return nil
}
