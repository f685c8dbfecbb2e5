package core

// MemoryUsageTracker follows the footprint of one accumulator instance
// plus its strategy against a fixed ceiling. The owning accumulator calls
// Set after every incorporation or merge.
type MemoryUsageTracker struct {
	currentBytes    int64
	maxAllowedBytes int64
}

func NewMemoryUsageTracker(maxAllowedBytes int64) *MemoryUsageTracker {
	return &MemoryUsageTracker{maxAllowedBytes: maxAllowedBytes}
}

func (t *MemoryUsageTracker) Set(bytes int64) {
	t.currentBytes = bytes
}

func (t *MemoryUsageTracker) CurrentBytes() int64 {
	return t.currentBytes
}

func (t *MemoryUsageTracker) MaxAllowedBytes() int64 {
	return t.maxAllowedBytes
}

func (t *MemoryUsageTracker) WithinLimit() bool {
	return t.currentBytes <= t.maxAllowedBytes
}
