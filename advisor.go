package sortbias

import (
	"fmt"
	"math"
	"time"
)

// Advisor chooses between sorting random keys and the dedicated permutation
// primitive. It applies the P_crit criterion and refuses to decide when the
// closed-form model is outside its validity regime.
//
// Decision flow:
// - Model validity breached → REVIEW (formula cannot be trusted)
// - P_crit ≤ target → SORT_KEYS (bias indistinguishable)
// - P_crit > target → PERMUTATION (bias detectable)
type Advisor struct {
	limits ModelLimits

	sortKeys    int
	permutation int
	review      int
}

// Request describes the permutation workload to judge.
type Request struct {
	K           float64 // Permutation length
	BitWidth    int     // Key randomness (m)
	Repetitions float64 // Independent permutations considered jointly (N)
	MaxPCrit    float64 // Highest acceptable distinguishing probability
}

// Decision is the advisor's recommendation and reasoning.
type Decision struct {
	Strategy    Strategy
	Reason      string
	Mitigation  string
	Request     Request
	PCrit       float64 // Achieved distinguishing probability
	MaxLog2K    float64 // Longest log2 K meeting MaxPCrit
	MarginLog2K float64 // MaxLog2K - log2 K; negative when over the limit
	Timestamp   time.Time
}

// NewAdvisor creates an advisor with the default model limits.
func NewAdvisor() *Advisor {
	return NewAdvisorWithLimits(DefaultModelLimits())
}

// NewAdvisorWithLimits creates an advisor with custom validity limits.
func NewAdvisorWithLimits(limits ModelLimits) *Advisor {
	return &Advisor{limits: limits}
}

// Recommend judges a request. An error is returned only for a target
// threshold outside (0.5, 1) or a repetition count below one; model validity
// problems yield a REVIEW decision instead.
func (a *Advisor) Recommend(req Request) (Decision, error) {
	if math.IsNaN(req.Repetitions) || req.Repetitions < 1 {
		return Decision{}, fmt.Errorf("%w: N=%v", ErrInvalidRepetitions, req.Repetitions)
	}
	log2N := math.Log2(req.Repetitions)

	maxLog2K, err := MaxLog2K(req.MaxPCrit, req.BitWidth, log2N)
	if err != nil {
		return Decision{}, err
	}

	now := time.Now()
	decision := Decision{
		Request:   req,
		MaxLog2K:  maxLog2K,
		Timestamp: now,
	}

	if err := a.limits.Validate(req.K, req.BitWidth, req.Repetitions); err != nil {
		a.review++
		decision.Strategy = StrategyReview
		decision.Reason = fmt.Sprintf(
			"MODEL OUT OF REGIME: K=%g, m=%d, N=%g\n%v",
			req.K, req.BitWidth, req.Repetitions, err,
		)
		decision.Mitigation = "OPTIONS:\n" +
			"  1. Use the permutation primitive (no key collisions)\n" +
			"  2. Measure the bias directly with a simulation\n" +
			"  3. Widen the key source (more bits shrink d)"
		return decision, nil
	}

	log2K := math.Log2(req.K)
	decision.PCrit = PCrit(req.K, req.BitWidth, req.Repetitions)
	decision.MarginLog2K = maxLog2K - log2K

	if decision.PCrit <= req.MaxPCrit {
		a.sortKeys++
		decision.Strategy = StrategySortKeys
		decision.Reason = fmt.Sprintf(
			"INDISTINGUISHABLE: P_crit=%.6f ≤ %.4f\n"+
				"  d(K, m) = %.3e\n"+
				"  log2 K = %.4f, limit %.4f (margin %.4f)",
			decision.PCrit, req.MaxPCrit,
			Bias(req.K, req.BitWidth),
			log2K, maxLog2K, decision.MarginLog2K,
		)
		decision.Mitigation = "No action required. Sorting random keys is acceptable."
		return decision, nil
	}

	a.permutation++
	decision.Strategy = StrategyPermutation
	decision.Reason = fmt.Sprintf(
		"DISTINGUISHABLE: P_crit=%.6f > %.4f\n"+
			"  d(K, m) = %.3e\n"+
			"  log2 K = %.4f exceeds limit %.4f by %.4f",
		decision.PCrit, req.MaxPCrit,
		Bias(req.K, req.BitWidth),
		log2K, maxLog2K, -decision.MarginLog2K,
	)
	decision.Mitigation = fmt.Sprintf("REQUIRED:\n"+
		"  Use the permutation primitive, or\n"+
		"  keep K ≤ 2^%.2f for m=%d, or\n"+
		"  draw keys with more bits", maxLog2K, req.BitWidth)
	return decision, nil
}

// GetStatistics returns decision counters.
func (a *Advisor) GetStatistics() map[string]int {
	return map[string]int{
		"sort_keys":   a.sortKeys,
		"permutation": a.permutation,
		"review":      a.review,
	}
}
