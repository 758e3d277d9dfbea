package sortbias

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// TestBuildTable_DefaultGrid verifies the standard table at N = 1.
func TestBuildTable_DefaultGrid(t *testing.T) {
	table, err := BuildTable(DefaultThresholds, StandardBitWidths, 0)
	if err != nil {
		t.Fatalf("BuildTable failed: %v", err)
	}

	want := map[float64][3]float64{
		0.51: {13.7880, 19.1214, 40.4547},
		0.55: {15.3384, 20.6717, 42.0051},
		0.6:  {16.0128, 21.3461, 42.6795},
		0.75: {16.9546, 22.2879, 43.6212},
		0.9:  {17.5719, 22.9053, 44.2386},
		0.99: {18.1454, 23.4787, 44.8120},
	}

	for p, row := range want {
		for j, m := range StandardBitWidths {
			got, ok := table.Lookup(p, m)
			if !ok {
				t.Fatalf("Missing cell P_crit=%v m=%d", p, m)
			}
			if math.Abs(got-row[j]) > 1e-4 {
				t.Errorf("P_crit=%v m=%d: got %.6f, want ≈ %.4f", p, m, got, row[j])
			}
		}
	}

	// Each row grows with the target and each column with m.
	for i := 1; i < len(table.Thresholds); i++ {
		for j := range table.BitWidths {
			if table.Cells[i][j] <= table.Cells[i-1][j] {
				t.Errorf("Column m=%d not increasing at row %d", table.BitWidths[j], i)
			}
		}
	}

	t.Logf("✓ Default table:\n%s", table.Markdown())
}

func TestTable_Markdown(t *testing.T) {
	table, err := BuildTable([]float64{0.55}, StandardBitWidths, 0)
	if err != nil {
		t.Fatal(err)
	}

	md := table.Markdown()
	for _, want := range []string{
		"| P_crit | m=24 | m=32 | m=64 |",
		"| 0.55 | 15.3384 | 20.6717 | 42.0051 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestTable_LookupMissing(t *testing.T) {
	table, err := BuildTable([]float64{0.6}, []int{BitsUint32}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := table.Lookup(0.55, BitsUint32); ok {
		t.Error("Lookup of an absent threshold should fail")
	}
	if _, ok := table.Lookup(0.6, BitsUint64); ok {
		t.Error("Lookup of an absent bit-width should fail")
	}
}

func TestBuildTable_Errors(t *testing.T) {
	if _, err := BuildTable(nil, StandardBitWidths, 0); err == nil {
		t.Error("Empty thresholds should be rejected")
	}
	if _, err := BuildTable([]float64{0.55, 0.5}, StandardBitWidths, 0); !errors.Is(err, ErrThresholdOutOfRange) {
		t.Errorf("Expected ErrThresholdOutOfRange, got %v", err)
	}
	if _, err := BuildTable(DefaultThresholds, StandardBitWidths, -2); !errors.Is(err, ErrInvalidRepetitions) {
		t.Errorf("Expected ErrInvalidRepetitions, got %v", err)
	}
}

// TestCheckLength verifies a concrete length against every bit-width.
func TestCheckLength(t *testing.T) {
	check, err := CheckLength(20, 0.55, 0, StandardBitWidths)
	if err != nil {
		t.Fatalf("CheckLength failed: %v", err)
	}

	valid := map[int]bool{BitsFloat32: false, BitsUint32: true, BitsUint64: true}
	for _, e := range check.Entries {
		if e.Valid != valid[e.BitWidth] {
			t.Errorf("m=%d: valid=%t, want %t (limit %.4f)", e.BitWidth, e.Valid, valid[e.BitWidth], e.MaxLog2K)
		}
		if (e.Margin >= 0) != e.Valid {
			t.Errorf("m=%d: margin %.4f disagrees with verdict", e.BitWidth, e.Margin)
		}
	}
	if !check.AnyValid() {
		t.Error("Expected at least one valid bit-width")
	}

	md := check.Markdown()
	if !strings.Contains(md, "✗") || !strings.Contains(md, "✓") {
		t.Errorf("Markdown should mark both verdicts:\n%s", md)
	}

	t.Logf("✓ log2 K = 20 at P_crit 0.55:\n%s", md)
}

func TestCheckLength_TooLong(t *testing.T) {
	check, err := CheckLength(50, 0.55, 0, StandardBitWidths)
	if err != nil {
		t.Fatal(err)
	}
	if check.AnyValid() {
		t.Error("2^50 elements should exceed every bit-width at P_crit 0.55")
	}

	if _, err := CheckLength(10, 1.5, 0, StandardBitWidths); !errors.Is(err, ErrThresholdOutOfRange) {
		t.Errorf("Expected ErrThresholdOutOfRange, got %v", err)
	}
}
