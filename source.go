package sortbias

import (
	"fmt"
	"math"
	"math/rand"
)

// KeySource produces random sort keys. Two keys collide exactly when their
// Key values are equal.
//
// Implementations wrap a *rand.Rand and are not safe for concurrent use.
type KeySource interface {
	Key() uint64
	Bits() int // Nominal randomness in bits
}

// Float32Source yields uniform float32 values in [0, 1) on the 2^-24 grid,
// the way single-precision uniform samplers derive them from a 32-bit draw.
type Float32Source struct {
	rng *rand.Rand
}

// NewFloat32Source wraps rng.
func NewFloat32Source(rng *rand.Rand) *Float32Source {
	return &Float32Source{rng: rng}
}

// Float returns the next sample.
func (s *Float32Source) Float() float32 {
	return float32(s.rng.Uint32()>>8) * (1.0 / (1 << 24))
}

// Key returns the bit pattern of the next sample.
func (s *Float32Source) Key() uint64 {
	return uint64(math.Float32bits(s.Float()))
}

// Bits returns 24.
func (s *Float32Source) Bits() int { return BitsFloat32 }

// Float64Source yields uniform float64 values in [0, 1) on the 2^-53 grid.
type Float64Source struct {
	rng *rand.Rand
}

// NewFloat64Source wraps rng.
func NewFloat64Source(rng *rand.Rand) *Float64Source {
	return &Float64Source{rng: rng}
}

// Float returns the next sample.
func (s *Float64Source) Float() float64 {
	return float64(s.rng.Uint64()>>11) * (1.0 / (1 << 53))
}

// Key returns the bit pattern of the next sample.
func (s *Float64Source) Key() uint64 {
	return math.Float64bits(s.Float())
}

// Bits returns 53.
func (s *Float64Source) Bits() int { return 53 }

// UintSource yields integers uniform on the half-open interval [0, 2^bits).
//
// The value is the top bits of a 64-bit draw. No inclusive upper bound is
// ever handed to an Intn-style helper, so 2^bits itself is never produced
// and no off-by-one in a high-bound convention can shrink the range.
type UintSource struct {
	rng   *rand.Rand
	bits  int
	shift uint
}

// NewUintSource wraps rng for a 1..64 bit range.
func NewUintSource(rng *rand.Rand, bits int) (*UintSource, error) {
	if bits < 1 || bits > 64 {
		return nil, fmt.Errorf("%w: uint source needs 1..64 bits, got %d", ErrInvalidBitWidth, bits)
	}
	return &UintSource{rng: rng, bits: bits, shift: uint(64 - bits)}, nil
}

// Key returns the next integer.
func (s *UintSource) Key() uint64 {
	return s.rng.Uint64() >> s.shift
}

// Bits returns the configured width.
func (s *UintSource) Bits() int { return s.bits }

// NewSource picks the source matching a bit-width: 24 → Float32Source,
// 53 → Float64Source, anything else → UintSource.
func NewSource(rng *rand.Rand, bits int) (KeySource, error) {
	switch bits {
	case BitsFloat32:
		return NewFloat32Source(rng), nil
	case 53:
		return NewFloat64Source(rng), nil
	default:
		return NewUintSource(rng, bits)
	}
}
