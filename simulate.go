package sortbias

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"
)

// SimulationConfig controls a Monte Carlo run of the sort-by-key strategy.
type SimulationConfig struct {
	K        int          // Permutation length
	BitWidth int          // Key randomness (m)
	Trials   int          // Permutations generated in total
	Workers  int          // Concurrent generators (0 = 1)
	Seed     int64        // Base seed; worker i uses Seed+i
	Logger   *slog.Logger // nil uses slog.Default()
}

// DefaultSimulationConfig returns a small run that makes the bias visible:
// 10-bit keys on 128 elements give d ≈ 0.031.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		K:        128,
		BitWidth: 10,
		Trials:   4000,
		Workers:  4,
		Seed:     1,
	}
}

// SimulationResult contains aggregated pair counts.
type SimulationResult struct {
	Config         SimulationConfig
	Trials         int64         // Permutations completed
	Pairs          int64         // Adjacent pairs inspected
	Ascending      int64         // Ascending adjacent pairs
	Tied           int64         // Adjacent pairs with equal keys
	Fraction       float64       // Ascending / Pairs
	ObservedBias   float64       // Fraction - ½
	TieBias        float64       // Tied / (2·Pairs), the excess the model attributes to ties
	PredictedBias  float64       // d(K, m)
	ZFair          float64       // Standard score of the count against the fair process
	WorkerFraction []float64     // Ascending fraction per worker
	WorkerMean     float64       // Mean of WorkerFraction
	WorkerStdDev   float64       // Spread of WorkerFraction
	Duration       time.Duration // Wall time
}

// Simulate generates cfg.Trials sort-keyed permutations across cfg.Workers
// goroutines and counts ascending and tied adjacent pairs.
//
// Tied pairs are always ascending and occur at rate 2·d(K, m), so TieBias
// tracks the model directly. The ascending excess itself is smaller: the
// boundary between two tie groups leans descending, which offsets part of the
// tie excess. ObservedBias therefore stays below PredictedBias.
//
// On cancellation the counts gathered so far are returned with ctx.Err().
func Simulate(ctx context.Context, cfg SimulationConfig) (SimulationResult, error) {
	if cfg.K < 2 {
		return SimulationResult{}, fmt.Errorf("permutation length must be at least 2, got %d", cfg.K)
	}
	if cfg.Trials < 1 {
		return SimulationResult{}, fmt.Errorf("trials must be at least 1, got %d", cfg.Trials)
	}
	if cfg.BitWidth < 1 || cfg.BitWidth > 64 {
		return SimulationResult{}, fmt.Errorf("%w: got %d", ErrInvalidBitWidth, cfg.BitWidth)
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		wg        sync.WaitGroup
		next      int64
		ascending = make([]int64, workers) // Per-worker counts
		tied      = make([]int64, workers)
		pairs     = make([]int64, workers)
		trials    = make([]int64, workers)
	)

	start := time.Now()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		workerID := i

		go func() {
			defer wg.Done()

			rng := rand.New(rand.NewSource(cfg.Seed + int64(workerID)))
			src, err := NewSource(rng, cfg.BitWidth)
			if err != nil {
				return // bit-width validated above
			}

			for atomic.AddInt64(&next, 1) <= int64(cfg.Trials) {
				if ctx.Err() != nil {
					return
				}
				keys := DrawKeys(src, cfg.K)
				perm := SortByKeys(keys)
				ascending[workerID] += int64(AscendingPairs(perm))
				tied[workerID] += int64(TiedPairs(perm, keys))
				pairs[workerID] += int64(cfg.K - 1)
				trials[workerID]++
			}
		}()
	}

	wg.Wait()

	result := SimulationResult{
		Config:        cfg,
		PredictedBias: Bias(float64(cfg.K), cfg.BitWidth),
		Duration:      time.Since(start),
	}

	fractions := make([]float64, 0, workers)
	for i := 0; i < workers; i++ {
		result.Ascending += ascending[i]
		result.Tied += tied[i]
		result.Pairs += pairs[i]
		result.Trials += trials[i]
		if pairs[i] > 0 {
			fractions = append(fractions, float64(ascending[i])/float64(pairs[i]))
		}
	}
	result.WorkerFraction = fractions

	if result.Pairs > 0 {
		p := float64(result.Pairs)
		result.Fraction = float64(result.Ascending) / p
		result.ObservedBias = result.Fraction - 0.5
		result.TieBias = float64(result.Tied) / (2 * p)
		result.ZFair = (float64(result.Ascending) - p/2) / (math.Sqrt(p) / 2)
	}
	if len(fractions) > 0 {
		result.WorkerMean, _ = stats.Mean(fractions)
		result.WorkerStdDev, _ = stats.StandardDeviation(fractions)
	}

	logger.Info("simulation finished",
		"k", cfg.K,
		"bits", cfg.BitWidth,
		"trials", result.Trials,
		"observed_bias", result.ObservedBias,
		"tie_bias", result.TieBias,
		"predicted_bias", result.PredictedBias,
		"z", result.ZFair,
		"duration", result.Duration)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}
