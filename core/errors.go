package core

import "github.com/pkg/errors"

// ErrExceededMemoryLimit is terminal for the accumulator instance that hit
// it: there is no spilling, the operation must fail rather than silently
// drop data. Wrapped instances carry the used/limit byte counts.
var ErrExceededMemoryLimit = errors.New(
	"percentile accumulator used too much memory and cannot spill to disk")

// ErrBadValue covers malformed requests and partial states: out-of-range
// 'p', an empty quantile list, a disallowed method, an undecodable
// envelope. Detected at construction or decode boundaries, never
// mid-stream.
var ErrBadValue = errors.New("bad value")
