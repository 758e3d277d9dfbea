package sortbias

import (
	"math/rand"
	"sort"
)

// Strategy names a way of producing a random permutation.
type Strategy string

const (
	StrategyPermutation Strategy = "PERMUTATION" // Dedicated primitive (Fisher–Yates)
	StrategySortKeys    Strategy = "SORT_KEYS"   // Sort indices by random keys
	StrategyReview      Strategy = "REVIEW"      // Model cannot decide; inspect manually
)

// Shuffle returns a uniformly random permutation of [0, k) using the
// dedicated primitive.
func Shuffle(rng *rand.Rand, k int) []int {
	return rng.Perm(k)
}

// SortKeyed returns a permutation of [0, k) obtained by drawing one key per
// index and stable-sorting the indices by key.
func SortKeyed(src KeySource, k int) []int {
	return SortByKeys(DrawKeys(src, k))
}

// DrawKeys draws k keys from src.
func DrawKeys(src KeySource, k int) []uint64 {
	keys := make([]uint64, k)
	for i := range keys {
		keys[i] = src.Key()
	}
	return keys
}

// SortByKeys returns the indices of keys stable-sorted by key value.
//
// Indices with equal keys stay in ascending order; that is the source of the
// bias d(K, m).
func SortByKeys(keys []uint64) []int {
	perm := make([]int, len(keys))
	for i := range perm {
		perm[i] = i
	}

	sort.SliceStable(perm, func(a, b int) bool {
		return keys[perm[a]] < keys[perm[b]]
	})

	return perm
}

// TiedPairs counts adjacent positions of perm whose keys are equal.
// Every tied pair is ascending.
func TiedPairs(perm []int, keys []uint64) int {
	count := 0
	for i := 1; i < len(perm); i++ {
		if keys[perm[i-1]] == keys[perm[i]] {
			count++
		}
	}
	return count
}

// AscendingPairs counts adjacent positions i with perm[i] < perm[i+1].
func AscendingPairs(perm []int) int {
	count := 0
	for i := 1; i < len(perm); i++ {
		if perm[i-1] < perm[i] {
			count++
		}
	}
	return count
}

// Collisions sorts keys in place and counts adjacent equal values.
// A value seen c times contributes c-1.
func Collisions(keys []uint64) int {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	count := 0
	for i := 1; i < len(keys); i++ {
		if keys[i] == keys[i-1] {
			count++
		}
	}
	return count
}
