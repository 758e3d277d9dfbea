package sortbias

import (
	"math"
	"math/rand"
	"testing"
)

// constSource returns the same key forever.
type constSource struct{}

func (constSource) Key() uint64 { return 7 }
func (constSource) Bits() int   { return 0 }

// isPermutation reports whether perm holds each of 0..len-1 exactly once.
func isPermutation(perm []int) bool {
	seen := make([]bool, len(perm))
	for _, v := range perm {
		if v < 0 || v >= len(perm) || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func TestShuffle_IsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, k := range []int{0, 1, 2, 17, 1000} {
		if perm := Shuffle(rng, k); len(perm) != k || !isPermutation(perm) {
			t.Errorf("Shuffle(%d) is not a permutation: %v", k, perm)
		}
	}
}

func TestSortKeyed_IsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	src, err := NewUintSource(rng, 4)
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []int{1, 2, 16, 500} {
		if perm := SortKeyed(src, k); len(perm) != k || !isPermutation(perm) {
			t.Errorf("SortKeyed(%d) is not a permutation", k)
		}
	}
}

// TestSortKeyed_TiesKeepOrder verifies colliding keys leave indices ascending,
// the mechanism behind the bias.
func TestSortKeyed_TiesKeepOrder(t *testing.T) {
	perm := SortKeyed(constSource{}, 50)

	for i, v := range perm {
		if v != i {
			t.Fatalf("All-equal keys should give the identity, got %v", perm)
		}
	}
	if got := AscendingPairs(perm); got != 49 {
		t.Errorf("Identity of length 50 has 49 ascending pairs, got %d", got)
	}

	t.Logf("✓ Tied keys preserve index order (every pair ascending)")
}

func TestAscendingPairs(t *testing.T) {
	tests := []struct {
		perm []int
		want int
	}{
		{nil, 0},
		{[]int{0}, 0},
		{[]int{0, 1, 2}, 2},
		{[]int{2, 1, 0}, 0},
		{[]int{1, 0, 2, 3}, 2},
	}

	for _, tt := range tests {
		if got := AscendingPairs(tt.perm); got != tt.want {
			t.Errorf("AscendingPairs(%v) = %d, want %d", tt.perm, got, tt.want)
		}
	}
}

func TestCollisions(t *testing.T) {
	keys := []uint64{3, 1, 3, 3, 2}
	if got := Collisions(keys); got != 2 {
		t.Errorf("Collisions = %d, want 2", got)
	}
	if got := Collisions([]uint64{5, 4, 3}); got != 0 {
		t.Errorf("Distinct keys: got %d collisions", got)
	}
}

// TestShuffle_Unbiased verifies the permutation primitive shows no
// ascending-pair excess.
func TestShuffle_Unbiased(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	var ascending, pairs int
	for i := 0; i < 2000; i++ {
		perm := Shuffle(rng, 64)
		ascending += AscendingPairs(perm)
		pairs += 63
	}

	fraction := float64(ascending) / float64(pairs)
	z := (float64(ascending) - float64(pairs)/2) / (math.Sqrt(float64(pairs)) / 2)
	if math.Abs(z) > 5 {
		t.Errorf("Shuffle looks biased: fraction %.5f, z = %.2f", fraction, z)
	}

	t.Logf("✓ Shuffle ascending fraction %.5f (z = %.2f)", fraction, z)
}

func TestTiedPairs(t *testing.T) {
	keys := []uint64{4, 1, 4, 2, 1}
	perm := SortByKeys(keys)

	want := []int{1, 4, 3, 0, 2}
	for i := range want {
		if perm[i] != want[i] {
			t.Fatalf("SortByKeys = %v, want %v", perm, want)
		}
	}
	if got := TiedPairs(perm, keys); got != 2 {
		t.Errorf("TiedPairs = %d, want 2", got)
	}
}
