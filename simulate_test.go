package sortbias

import (
	"context"
	"errors"
	"testing"
)

// TestSimulate_DetectsBias verifies the default run sees the collision bias
// and that tied pairs track d(K, m).
func TestSimulate_DetectsBias(t *testing.T) {
	cfg := DefaultSimulationConfig()

	result, err := Simulate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if result.Trials != int64(cfg.Trials) {
		t.Errorf("Expected %d trials, got %d", cfg.Trials, result.Trials)
	}
	if want := int64(cfg.Trials) * int64(cfg.K-1); result.Pairs != want {
		t.Errorf("Expected %d pairs, got %d", want, result.Pairs)
	}
	if result.Tied > result.Ascending {
		t.Errorf("Tied pairs (%d) cannot exceed ascending pairs (%d)", result.Tied, result.Ascending)
	}
	if len(result.WorkerFraction) == 0 || len(result.WorkerFraction) > cfg.Workers {
		t.Errorf("Unexpected worker fractions: %v", result.WorkerFraction)
	}

	AssertSimulationMatchesModel(t, result, DefaultAssertionConfig())

	t.Logf("K=%d m=%d: fraction %.5f, tie d %.5f, predicted d %.5f, z %.1f in %v",
		cfg.K, cfg.BitWidth, result.Fraction, result.TieBias, result.PredictedBias, result.ZFair, result.Duration)
}

// TestSimulate_WideKeysLookFair verifies 64-bit keys leave no detectable bias.
func TestSimulate_WideKeysLookFair(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.BitWidth = BitsUint64
	cfg.Trials = 2000

	result, err := Simulate(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if result.Tied != 0 {
		t.Errorf("64-bit keys on 128 elements should not collide, got %d ties", result.Tied)
	}
	if result.ZFair > 5 || result.ZFair < -5 {
		t.Errorf("Expected no detectable bias, z = %.2f", result.ZFair)
	}

	t.Logf("✓ 64-bit keys: z = %.2f", result.ZFair)
}

func TestSimulate_SingleWorker(t *testing.T) {
	cfg := DefaultSimulationConfig()
	cfg.Workers = 0
	cfg.Trials = 100

	result, err := Simulate(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.Trials != 100 || len(result.WorkerFraction) != 1 {
		t.Errorf("Expected 100 trials on one worker, got %d on %d", result.Trials, len(result.WorkerFraction))
	}
	if result.WorkerStdDev != 0 {
		t.Errorf("One worker has no spread, got %g", result.WorkerStdDev)
	}
}

func TestSimulate_InvalidConfig(t *testing.T) {
	base := DefaultSimulationConfig()

	short := base
	short.K = 1
	noTrials := base
	noTrials.Trials = 0
	wide := base
	wide.BitWidth = 65

	for name, cfg := range map[string]SimulationConfig{"K=1": short, "trials=0": noTrials, "m=65": wide} {
		if _, err := Simulate(context.Background(), cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := Simulate(context.Background(), wide); !errors.Is(err, ErrInvalidBitWidth) {
		t.Errorf("m=65: expected ErrInvalidBitWidth, got %v", err)
	}
}

// TestSimulate_Cancelled verifies a cancelled run returns partial counts and ctx.Err().
func TestSimulate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Simulate(ctx, DefaultSimulationConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if result.Trials != 0 {
		t.Errorf("Cancelled before start, expected no trials, got %d", result.Trials)
	}
	if result.PredictedBias == 0 {
		t.Error("Partial result should still carry the predicted bias")
	}
}
