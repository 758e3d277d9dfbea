package sortbias

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
)

// TestValidateModel_InRegime verifies tabulated lengths satisfy every assumption.
func TestValidateModel_InRegime(t *testing.T) {
	cases := []struct {
		k        float64
		bitWidth int
		n        float64
	}{
		{1 << 15, BitsFloat32, 1},
		{1 << 20, BitsUint32, 1},
		{1 << 40, BitsUint64, 1 << 10},
	}

	for _, c := range cases {
		if err := ValidateModel(c.k, c.bitWidth, c.n); err != nil {
			t.Errorf("K=%g m=%d N=%g should be in regime: %v", c.k, c.bitWidth, c.n, err)
		}
	}

	t.Logf("✓ Tabulated lengths lie inside the approximation regime")
}

// TestValidateModel_DomainBreaches verifies K ≤ 1, m ≤ 0 and N < 1 are reported together.
func TestValidateModel_DomainBreaches(t *testing.T) {
	err := ValidateModel(1, 0, 0.5)
	if !errors.Is(err, ErrModelValidity) {
		t.Fatalf("Expected ErrModelValidity, got %v", err)
	}

	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Expected *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 3 {
		t.Errorf("Expected 3 breaches, got %d: %v", len(merr.Errors), err)
	}
}

// TestValidateModel_ApproximationBreaches verifies the regime checks.
func TestValidateModel_ApproximationBreaches(t *testing.T) {
	// Too few pairs for the normal approximation.
	err := ValidateModel(10, BitsUint32, 1)
	if !errors.Is(err, ErrModelValidity) {
		t.Errorf("N·K=10 should breach the normal approximation, got %v", err)
	}

	// Large K on a narrow source: d and triple collisions both too large.
	err = ValidateModel(1<<30, BitsFloat32, 1)
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Expected *multierror.Error, got %v", err)
	}
	if len(merr.Errors) != 2 {
		t.Errorf("Expected bias and triple-collision breaches, got %d: %v", len(merr.Errors), err)
	}

	t.Logf("✓ Out-of-regime parameters flagged:\n%v", err)
}

// TestModelLimits_Custom verifies custom limits are honoured.
func TestModelLimits_Custom(t *testing.T) {
	strict := DefaultModelLimits()
	strict.MinTrials = 1 << 20

	if err := strict.Validate(1<<15, BitsFloat32, 1); err == nil {
		t.Error("Strict limits should reject N·K = 2^15")
	}
	if err := DefaultModelLimits().Validate(1<<15, BitsFloat32, 1); err != nil {
		t.Errorf("Default limits should accept N·K = 2^15: %v", err)
	}
}
