package core

import (
	"github.com/pkg/errors"

	"quantiledb/percentile"
)

// Definition is the operator-shape document produced by
// SerializeDefinition. Parsing it back and re-serializing yields an
// equivalent document. An absent "p" means the implicit median quantile.
type Definition struct {
	Input  string    `json:"input"`
	Ps     []float64 `json:"p,omitempty"`
	Method string    `json:"method"`
}

// ParseDefinition validates a definition document against the enabled
// method set and rebuilds the request. This is the construction boundary:
// requests that pass here are never re-validated downstream.
func ParseDefinition(def Definition, accurateEnabled bool) (QuantileRequest, error) {
	if err := percentile.ValidateMethodName(def.Method, accurateEnabled); err != nil {
		return QuantileRequest{}, errors.Wrap(ErrBadValue, err.Error())
	}
	method, err := percentile.ParseMethod(def.Method)
	if err != nil {
		return QuantileRequest{}, errors.Wrap(ErrBadValue, err.Error())
	}
	ps := def.Ps
	if len(ps) == 0 {
		ps = []float64{0.5}
	}
	return NewQuantileRequest(def.Input, ps, method)
}
