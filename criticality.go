package sortbias

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// PairModel is the de Moivre–Laplace approximation of the number of
// ascending adjacent pairs observed across N permutations of length K.
//
// A permutation has K-1 adjacent pairs, rounded to K for large K, so
// n = N·K Bernoulli trials are approximated by a normal distribution:
//
//	fair:   μ = n/2,        σ = √n / 2
//	biased: μ = n(½ + d),   σ = √(n(¼ - d²))
//
// Under the model's regime d² is negligible and both share σ = √n/2.
type PairModel struct {
	K        float64 // Permutation length
	BitWidth int     // Key source randomness (m)
	N        float64 // Independent repetitions
}

// NewPairModel creates the Gaussian model for the given parameters.
func NewPairModel(k float64, bitWidth int, n float64) PairModel {
	return PairModel{K: k, BitWidth: bitWidth, N: n}
}

// Trials returns n = N·K.
func (p PairModel) Trials() float64 {
	return p.N * p.K
}

// Bias returns d(K, m).
func (p PairModel) Bias() float64 {
	return Bias(p.K, p.BitWidth)
}

// Fair returns the normal approximation of the unbiased reference process.
func (p PairModel) Fair() distuv.Normal {
	n := p.Trials()
	return distuv.Normal{Mu: n / 2, Sigma: math.Sqrt(n) / 2}
}

// Biased returns the normal approximation of the sort-by-key process with the
// common-σ simplification applied.
func (p PairModel) Biased() distuv.Normal {
	n := p.Trials()
	return distuv.Normal{Mu: n * (0.5 + p.Bias()), Sigma: math.Sqrt(n) / 2}
}

// BiasedExact returns the biased approximation keeping the -d² variance term.
func (p PairModel) BiasedExact() distuv.Normal {
	n := p.Trials()
	d := p.Bias()
	return distuv.Normal{Mu: n * (0.5 + d), Sigma: math.Sqrt(n * (0.25 - d*d))}
}

// Threshold returns the count at which an optimal observer switches its guess
// from fair to biased: the midpoint of the two means.
func (p PairModel) Threshold() float64 {
	return (p.Fair().Mu + p.Biased().Mu) / 2
}

// BestGuess returns the probability that an optimal observer, shown one sample
// drawn with equal prior probability from a or b, names its source correctly.
//
// For equal-variance normals the optimal rule cuts at the midpoint of the
// means and the success probability is Φ(|μb - μa| / 2σ). Distinct variances
// fall back to the pooled σ.
func BestGuess(a, b distuv.Normal) float64 {
	sigma := a.Sigma
	if a.Sigma != b.Sigma {
		sigma = math.Sqrt((a.Sigma*a.Sigma + b.Sigma*b.Sigma) / 2)
	}
	if sigma == 0 {
		if a.Mu == b.Mu {
			return 0.5
		}
		return 1
	}
	return distuv.UnitNormal.CDF(math.Abs(b.Mu-a.Mu) / (2 * sigma))
}

// PCrit returns the best-achievable probability of telling a biased
// sort-by-key permutation sample apart from a fair one:
//
//	P_crit(K; m, N) = Φ(√(N·K) · d(K, m))
//
// It is exactly 0.5 when d = 0. The approximation holds while d² is
// negligible, N·K is large, and three-way collisions are rare; ValidateModel
// checks those conditions.
func PCrit(k float64, bitWidth int, n float64) float64 {
	return distuv.UnitNormal.CDF(math.Sqrt(n*k) * Bias(k, bitWidth))
}

// PCrit returns the best-guess probability for the model's parameters.
func (p PairModel) PCrit() float64 {
	return BestGuess(p.Fair(), p.Biased())
}
