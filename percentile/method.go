package percentile

import "github.com/pkg/errors"

// Method selects the quantile estimation strategy bound to an accumulator.
type Method int

const (
	Approximate Method = iota
	Discrete
	Continuous
)

const (
	MethodNameApproximate = "approximate"
	MethodNameDiscrete    = "discrete"
	MethodNameContinuous  = "continuous"
)

func (m Method) String() string {
	switch m {
	case Approximate:
		return MethodNameApproximate
	case Discrete:
		return MethodNameDiscrete
	case Continuous:
		return MethodNameContinuous
	}
	return "unknown"
}

func ParseMethod(name string) (Method, error) {
	switch name {
	case MethodNameApproximate:
		return Approximate, nil
	case MethodNameDiscrete:
		return Discrete, nil
	case MethodNameContinuous:
		return Continuous, nil
	}
	return 0, errors.Errorf("unknown percentile method: %q", name)
}

// ValidateMethodName checks a method token against the enabled method set.
// The accurate methods sit behind a feature gate; with the gate off only
// the approximate method is accepted.
func ValidateMethodName(name string, accurateEnabled bool) error {
	if accurateEnabled {
		if name != MethodNameApproximate && name != MethodNameDiscrete &&
			name != MethodNameContinuous {
			return errors.Errorf(
				"only 'approximate', 'discrete' and 'continuous' can be used "+
					"as percentile 'method', found: %q", name)
		}
		return nil
	}
	if name != MethodNameApproximate {
		return errors.Errorf(
			"only 'approximate' can be used as percentile 'method', found: %q",
			name)
	}
	return nil
}
