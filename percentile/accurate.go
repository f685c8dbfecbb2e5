package percentile

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// accurate is the shared state of the exact strategies: every observation
// is retained. Exactness over bounded memory is a deliberate trade-off;
// the owning accumulator's tracker is what bounds the footprint.
type accurate struct {
	values []float64
	sorted bool
}

func (a *accurate) Incorporate(value float64) {
	a.values = append(a.values, value)
	a.sorted = false
}

func (a *accurate) MemoryUsageBytes() int {
	return cap(a.values) * 8
}

func (a *accurate) sortIfNeeded() {
	if !a.sorted {
		sort.Float64s(a.values)
		a.sorted = true
	}
}

// SerializePartial emits the retained values as little-endian float64s.
func (a *accurate) SerializePartial() ([]byte, error) {
	buf := make([]byte, 8*len(a.values))
	for i, v := range a.values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf, nil
}

func (a *accurate) Combine(partial []byte) error {
	if len(partial)%8 != 0 {
		return errors.Errorf(
			"malformed accurate partial state: %d bytes is not a whole "+
				"number of float64s", len(partial))
	}
	for off := 0; off < len(partial); off += 8 {
		a.values = append(a.values,
			math.Float64frombits(binary.LittleEndian.Uint64(partial[off:])))
	}
	a.sorted = false
	return nil
}
