package sortbias

import (
	"fmt"
	"math"
)

// MaxLog2K returns the largest log2 K for which sorting by m-bit random keys
// keeps P_crit at or below the target across 2^log2N repetitions.
//
// Inverting P_crit = Φ(√(N·K)·d) with d ≈ K/2^(m+2):
//
//	log2 K = (2/3)·(log2(√2·erfinv(2·P_crit - 1)) + m + 2) - log2(N)/3
//
// The target must lie strictly inside (0.5, 1). Near 0.5 the allowed length
// shrinks toward zero (log2 K → -∞), so 0.5 itself is rejected.
func MaxLog2K(pcrit float64, bitWidth int, log2N float64) (float64, error) {
	if math.IsNaN(pcrit) || pcrit <= 0.5 || pcrit >= 1 {
		return 0, fmt.Errorf("%w: got %v", ErrThresholdOutOfRange, pcrit)
	}
	if math.IsNaN(log2N) || log2N < 0 {
		return 0, fmt.Errorf("%w: log2N=%v", ErrInvalidRepetitions, log2N)
	}
	if bitWidth <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidBitWidth, bitWidth)
	}

	z := math.Sqrt2 * math.Erfinv(2*pcrit-1)
	return 2.0/3.0*(math.Log2(z)+float64(bitWidth)+2) - log2N/3, nil
}

// MaxK returns 2^MaxLog2K.
func MaxK(pcrit float64, bitWidth int, log2N float64) (float64, error) {
	l, err := MaxLog2K(pcrit, bitWidth, log2N)
	if err != nil {
		return 0, err
	}
	return math.Exp2(l), nil
}
