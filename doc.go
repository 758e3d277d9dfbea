// Package sortbias decides when sorting random keys is an acceptable way to
// generate a random permutation.
//
// # Overview
//
// Two strategies produce a random permutation of K elements:
//
//   - a dedicated permutation primitive (Fisher–Yates shuffle)
//   - drawing one random key per element and sorting by key
//
// The second is biased. Keys come from a finite source of 2^m values, and
// elements whose keys collide keep their original order after a stable sort.
// sortbias quantifies that bias and turns it into a decision rule.
//
// # The Bias
//
// The excess probability over ½ that an adjacent pair of the sorted
// sequence is ascending:
//
//	d(K, m) = (K-1) / 2^(m+2)
//
// Typical bit-widths:
//   - m = 24: float32 uniform samples
//   - m = 32: 32-bit integers
//   - m = 64: 64-bit integers
//
// # The Criterion
//
// Counting ascending pairs over N permutations, the fair and biased counts
// are approximately normal (de Moivre–Laplace). An optimal observer with a
// 50/50 prior names the right source with probability
//
//	P_crit(K; m, N) = Φ(√(N·K) · d)
//
// P_crit = 0.5 means the bias is invisible.
//
//	p := sortbias.PCrit(1<<16, sortbias.BitsUint32, 1)
//
// # The Decision Table
//
// Inverting the criterion gives the longest permutation that keeps P_crit at
// or below a target:
//
//	log2 K = (2/3)·(log2(√2·erfinv(2·P_crit - 1)) + m + 2) - log2(N)/3
//
//	maxLog2K, err := sortbias.MaxLog2K(0.55, sortbias.BitsFloat32, 0) // 15.3384
//
//	table, err := sortbias.BuildTable(sortbias.DefaultThresholds, sortbias.StandardBitWidths, 0)
//	fmt.Print(table.Markdown())
//
// # The Advisor
//
//	advisor := sortbias.NewAdvisor()
//	decision, err := advisor.Recommend(sortbias.Request{
//	    K:           1 << 20,
//	    BitWidth:    sortbias.BitsUint32,
//	    Repetitions: 1000,
//	    MaxPCrit:    0.55,
//	})
//
//	switch decision.Strategy {
//	case sortbias.StrategySortKeys:
//	    // Bias indistinguishable
//	case sortbias.StrategyPermutation:
//	    // Use rand.Perm
//	case sortbias.StrategyReview:
//	    // Approximation out of regime, see decision.Reason
//	}
//
// # Model Validity
//
// The closed forms assume d² is negligible, N·K is large enough for the
// normal approximation, and three-way key collisions are rare. ValidateModel
// reports every breach.
//
// # Measuring Sources
//
// EstimateBits counts collisions in sorted samples from a KeySource and
// solves the birthday model for the effective bit-width. Simulate runs the
// sort-by-key strategy directly. Its tied-pair rate tracks d(K, m); the raw
// ascending-pair excess comes out smaller, because the boundary between two
// tie groups leans descending, so d(K, m) is an upper bound on it.
//
// # Testing
//
//	func TestMyShuffle(t *testing.T) {
//	    cfg := sortbias.DefaultAssertionConfig()
//	    sortbias.AssertIndistinguishable(t, 1<<12, sortbias.BitsUint32, 1, cfg)
//	    sortbias.AssertFair(t, func() []int { return myShuffle(1000) }, 2000, cfg)
//	}
package sortbias
