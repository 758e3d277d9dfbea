package sortbias

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/montanaflynn/stats"
)

// EstimatorConfig controls the empirical bit-width estimator.
type EstimatorConfig struct {
	SampleSize int          // Keys drawn per round
	Rounds     int          // Independent rounds averaged
	StartBits  float64      // First candidate bit-width
	StepBits   float64      // Scan increment
	MaxBits    float64      // Scan ceiling
	Logger     *slog.Logger // nil uses slog.Default()
}

// DefaultEstimatorConfig returns a configuration that resolves sources up to
// roughly 36 bits: 2^20 draws per round produce about 2^39/2^b collisions.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		SampleSize: 1 << 20,
		Rounds:     8,
		StartBits:  2.0,
		StepBits:   0.001,
		MaxBits:    64,
	}
}

// Estimate contains the outcome of a bit-width estimation.
type Estimate struct {
	Bits               float64   // Estimated effective bit-width
	ObservedCollisions float64   // Mean collisions per round
	StdDevCollisions   float64   // Standard deviation across rounds
	PerRound           []float64 // Collisions observed in each round
	SampleSize         int
	Saturated          bool // Scan hit MaxBits: the source has at least that many bits
}

// ExpectedCollisions returns the birthday-problem expectation of
// n - distinct values among n uniform draws from 2^bits values:
//
//	E(b) = n - 2^b·(1 - (1 - 2^-b)^n)
func ExpectedCollisions(n int, bits float64) float64 {
	space := math.Exp2(bits)
	// (1 - 2^-b)^n = exp(n·log1p(-2^-b)); expm1 keeps precision when 2^b ≫ n.
	distinct := -space * math.Expm1(float64(n)*math.Log1p(-1/space))
	return float64(n) - distinct
}

// SolveBits scans candidate bit-widths upward from cfg.StartBits in steps of
// cfg.StepBits and returns the first one whose expected collision count is
// at or below observed. The second result is false when the scan reaches
// cfg.MaxBits without crossing, or when no collision was observed at all.
func SolveBits(n int, observed float64, cfg EstimatorConfig) (float64, bool) {
	if observed <= 0 {
		return cfg.MaxBits, false
	}

	steps := int(math.Round((cfg.MaxBits - cfg.StartBits) / cfg.StepBits))
	for i := 0; i <= steps; i++ {
		b := cfg.StartBits + float64(i)*cfg.StepBits
		if ExpectedCollisions(n, b) <= observed {
			return b, true
		}
	}
	return cfg.MaxBits, false
}

// EstimateBits measures the effective bit-width of src by counting key
// collisions in sorted samples and inverting the birthday model.
//
// Cancellation is checked between rounds; a cancelled run returns ctx.Err().
func EstimateBits(ctx context.Context, src KeySource, cfg EstimatorConfig) (Estimate, error) {
	if cfg.SampleSize < 2 {
		return Estimate{}, fmt.Errorf("sample size must be at least 2, got %d", cfg.SampleSize)
	}
	if cfg.Rounds < 1 {
		return Estimate{}, fmt.Errorf("rounds must be at least 1, got %d", cfg.Rounds)
	}
	if cfg.StepBits <= 0 || cfg.MaxBits <= cfg.StartBits {
		return Estimate{}, fmt.Errorf("invalid scan range [%v, %v] step %v",
			cfg.StartBits, cfg.MaxBits, cfg.StepBits)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	keys := make([]uint64, cfg.SampleSize)
	perRound := make([]float64, 0, cfg.Rounds)

	for round := 0; round < cfg.Rounds; round++ {
		if err := ctx.Err(); err != nil {
			return Estimate{}, err
		}

		for i := range keys {
			keys[i] = src.Key()
		}
		c := Collisions(keys)
		perRound = append(perRound, float64(c))

		logger.Debug("estimator round", "round", round, "collisions", c)
	}

	mean, err := stats.Mean(perRound)
	if err != nil {
		return Estimate{}, fmt.Errorf("averaging collisions: %w", err)
	}
	var stddev float64
	if len(perRound) > 1 {
		if stddev, err = stats.StandardDeviationSample(perRound); err != nil {
			return Estimate{}, fmt.Errorf("collision spread: %w", err)
		}
	}

	bits, crossed := SolveBits(cfg.SampleSize, mean, cfg)

	logger.Info("estimated key bit-width",
		"bits", bits,
		"nominal", src.Bits(),
		"collisions", mean,
		"saturated", !crossed)

	return Estimate{
		Bits:               bits,
		ObservedCollisions: mean,
		StdDevCollisions:   stddev,
		PerRound:           perRound,
		SampleSize:         cfg.SampleSize,
		Saturated:          !crossed,
	}, nil
}
