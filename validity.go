package sortbias

import (
	"errors"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
)

// ErrModelValidity marks a parameter set outside the regime where the
// closed-form bias model can be trusted.
var ErrModelValidity = errors.New("outside bias model validity")

// ModelLimits bounds the approximation regime.
type ModelLimits struct {
	MinTrials               float64 // N·K below this makes the normal approximation weak
	MaxBias                 float64 // d above this makes d² non-negligible against d
	MaxTripleCollisionRatio float64 // Triple-to-pair collision ratio ceiling
}

// DefaultModelLimits returns the limits used by ValidateModel.
func DefaultModelLimits() ModelLimits {
	return ModelLimits{
		MinTrials:               30,
		MaxBias:                 0.01,
		MaxTripleCollisionRatio: 0.01,
	}
}

// ValidateModel reports every way in which (K, m, N) breaks the assumptions
// behind Bias, PCrit and MaxLog2K. It returns nil when all hold.
//
// Each breach wraps ErrModelValidity; the result is a *multierror.Error when
// more than one condition fails.
func ValidateModel(k float64, bitWidth int, n float64) error {
	return DefaultModelLimits().Validate(k, bitWidth, n)
}

// Validate checks (K, m, N) against the limits.
func (l ModelLimits) Validate(k float64, bitWidth int, n float64) error {
	var result *multierror.Error

	breach := func(format string, args ...any) {
		result = multierror.Append(result,
			fmt.Errorf("%w: "+format, append([]any{ErrModelValidity}, args...)...))
	}

	if math.IsNaN(k) || k <= 1 {
		breach("permutation length K=%v must exceed 1", k)
	}
	if bitWidth <= 0 {
		breach("bit-width m=%d must be positive", bitWidth)
	}
	if math.IsNaN(n) || n < 1 {
		breach("repetition count N=%v must be at least 1", n)
	}
	if result != nil {
		return result.ErrorOrNil()
	}

	if trials := n * k; trials < l.MinTrials {
		breach("N·K=%.0f pairs below %.0f, normal approximation is weak", trials, l.MinTrials)
	}
	if d := Bias(k, bitWidth); d > l.MaxBias {
		breach("bias d=%.4g exceeds %.4g, d² is not negligible", d, l.MaxBias)
	}
	if r := TripleCollisionRatio(k, bitWidth); r > l.MaxTripleCollisionRatio {
		breach("triple/pair collision ratio %.4g exceeds %.4g", r, l.MaxTripleCollisionRatio)
	}

	return result.ErrorOrNil()
}
