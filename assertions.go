package sortbias

import (
	"math"
	"testing"
)

// AssertionConfig contains thresholds for permutation-bias assertions.
type AssertionConfig struct {
	// Highest acceptable distinguishing probability
	MaxPCrit float64

	// Relative tolerance between simulated and predicted bias (0.5 = ±50%)
	BiasTolerance float64

	// Minimum |z| for a simulated bias to count as detected
	MinZ float64
}

// DefaultAssertionConfig returns conservative thresholds.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		MaxPCrit:      0.55,
		BiasTolerance: 0.5,
		MinZ:          4,
	}
}

// AssertIndistinguishable verifies that sorting K elements by m-bit keys,
// repeated N times, keeps P_crit at or below cfg.MaxPCrit.
//
// Mathematical property:
//
//	Φ(√(N·K) · (K-1)/2^(m+2)) ≤ MaxPCrit
func AssertIndistinguishable(t *testing.T, k float64, bitWidth int, n float64, cfg AssertionConfig) {
	t.Helper()

	if err := ValidateModel(k, bitWidth, n); err != nil {
		t.Fatalf("Bias model does not apply: %v", err)
	}

	p := PCrit(k, bitWidth, n)
	if p > cfg.MaxPCrit {
		limit, _ := MaxLog2K(cfg.MaxPCrit, bitWidth, math.Log2(n))
		t.Errorf("Sort-by-key bias is distinguishable: P_crit = %.6f (max: %.4f)\n"+
			"log2 K = %.4f exceeds %.4f for m=%d. Use a permutation primitive.",
			p, cfg.MaxPCrit, math.Log2(k), limit, bitWidth)
	}

	t.Logf("✓ Indistinguishable: P_crit = %.6f (threshold: %.4f)", p, cfg.MaxPCrit)
}

// AssertSimulationMatchesModel verifies a Monte Carlo run detects the bias,
// that its tie rate lands within cfg.BiasTolerance of d(K, m), and that the
// ascending excess does not exceed d(K, m).
func AssertSimulationMatchesModel(t *testing.T, result SimulationResult, cfg AssertionConfig) {
	t.Helper()

	if result.Pairs == 0 {
		t.Fatalf("Simulation inspected no pairs")
	}

	if math.Abs(result.ZFair) < cfg.MinZ {
		t.Errorf("Bias not detected: z = %.2f (min: %.2f)", result.ZFair, cfg.MinZ)
	}

	lo := result.PredictedBias * (1 - cfg.BiasTolerance)
	hi := result.PredictedBias * (1 + cfg.BiasTolerance)
	if result.TieBias < lo || result.TieBias > hi {
		t.Errorf("Tie bias %.5f outside [%.5f, %.5f] (predicted %.5f)",
			result.TieBias, lo, hi, result.PredictedBias)
	}
	if result.ObservedBias <= 0 || result.ObservedBias > hi {
		t.Errorf("Ascending excess %.5f outside (0, %.5f]", result.ObservedBias, hi)
	}

	t.Logf("✓ Simulation matches model: tie d = %.5f, ascending excess = %.5f, predicted d = %.5f, z = %.2f",
		result.TieBias, result.ObservedBias, result.PredictedBias, result.ZFair)
}

// AssertFair verifies that a permutation generator shows no ascending-pair
// bias: the z-score of ascending pairs over trials permutations
// stays below cfg.MinZ.
func AssertFair(t *testing.T, generate func() []int, trials int, cfg AssertionConfig) {
	t.Helper()

	var ascending, pairs int64
	for i := 0; i < trials; i++ {
		perm := generate()
		ascending += int64(AscendingPairs(perm))
		if len(perm) > 1 {
			pairs += int64(len(perm) - 1)
		}
	}
	if pairs == 0 {
		t.Fatalf("Generator produced no adjacent pairs")
	}

	p := float64(pairs)
	z := (float64(ascending) - p/2) / (math.Sqrt(p) / 2)
	if math.Abs(z) >= cfg.MinZ {
		t.Errorf("Generator is biased: ascending fraction %.5f, z = %.2f (max |z|: %.2f)",
			float64(ascending)/p, z, cfg.MinZ)
	}

	t.Logf("✓ Fair generator: ascending fraction %.5f, z = %.2f", float64(ascending)/p, z)
}
