package sortbias

import (
	"errors"
	"math"
)

// Effective key randomness of the common sources, in bits.
//
// A float32 uniform sample carries a 24-bit mantissa; integer sources carry
// their full width.
const (
	BitsFloat32 = 24
	BitsUint32  = 32
	BitsUint64  = 64
)

// StandardBitWidths are the bit-widths tabulated by default.
var StandardBitWidths = []int{BitsFloat32, BitsUint32, BitsUint64}

var (
	// ErrThresholdOutOfRange is returned when a target P_crit lies outside (0.5, 1).
	ErrThresholdOutOfRange = errors.New("critical probability out of range (0.5, 1)")

	// ErrInvalidRepetitions is returned for repetition counts below one (log2N < 0).
	ErrInvalidRepetitions = errors.New("repetition count must be at least 1")

	// ErrInvalidBitWidth is returned for non-positive bit-widths.
	ErrInvalidBitWidth = errors.New("bit-width must be positive")
)

// Bias returns the excess probability over ½ that an adjacent pair of a
// sequence sorted by random keys is ascending:
//
//	d(K, m) = (K-1) / 2^(m+2)
//
// K is the permutation length and m the bit-width of the key source.
// The value is only meaningful for K > 1; see ValidateModel.
func Bias(k float64, bitWidth int) float64 {
	return (k - 1) / math.Exp2(float64(bitWidth+2))
}

// ExpectedPairCollisions returns C(K,2)/2^m, the expected number of key pairs
// sharing a value among K keys.
func ExpectedPairCollisions(k float64, bitWidth int) float64 {
	return k * (k - 1) / 2 / math.Exp2(float64(bitWidth))
}

// TripleCollisionRatio returns the expected number of three-way collisions
// relative to two-way collisions: (K-2) / (3·2^m).
//
// The bias model counts every tie as a single pair; it stays accurate only
// while this ratio is small.
func TripleCollisionRatio(k float64, bitWidth int) float64 {
	return (k - 2) / (3 * math.Exp2(float64(bitWidth)))
}
