package sortbias

import (
	"fmt"
	"strings"
)

// DefaultThresholds are the P_crit targets tabulated by default.
var DefaultThresholds = []float64{0.51, 0.55, 0.6, 0.75, 0.9, 0.99}

// Table holds MaxLog2K for every (threshold, bit-width) combination at a
// fixed repetition count.
type Table struct {
	Thresholds []float64
	BitWidths  []int
	Log2N      float64
	Cells      [][]float64 // Cells[i][j] = MaxLog2K(Thresholds[i], BitWidths[j], Log2N)
}

// BuildTable evaluates MaxLog2K over the grid. Any invalid threshold,
// bit-width or repetition count aborts the table.
func BuildTable(thresholds []float64, bitWidths []int, log2N float64) (Table, error) {
	if len(thresholds) == 0 || len(bitWidths) == 0 {
		return Table{}, fmt.Errorf("table needs at least one threshold and one bit-width")
	}

	cells := make([][]float64, len(thresholds))
	for i, p := range thresholds {
		cells[i] = make([]float64, len(bitWidths))
		for j, m := range bitWidths {
			v, err := MaxLog2K(p, m, log2N)
			if err != nil {
				return Table{}, fmt.Errorf("cell P_crit=%v m=%d: %w", p, m, err)
			}
			cells[i][j] = v
		}
	}

	return Table{
		Thresholds: thresholds,
		BitWidths:  bitWidths,
		Log2N:      log2N,
		Cells:      cells,
	}, nil
}

// Lookup returns the cell for a threshold and bit-width present in the table.
func (t Table) Lookup(pcrit float64, bitWidth int) (float64, bool) {
	for i, p := range t.Thresholds {
		if p != pcrit {
			continue
		}
		for j, m := range t.BitWidths {
			if m == bitWidth {
				return t.Cells[i][j], true
			}
		}
	}
	return 0, false
}

// Markdown renders the table as a pipe table with log2 K to four decimals.
func (t Table) Markdown() string {
	var b strings.Builder

	b.WriteString("| P_crit |")
	for _, m := range t.BitWidths {
		fmt.Fprintf(&b, " m=%d |", m)
	}
	b.WriteString("\n|---|")
	for range t.BitWidths {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	for i, p := range t.Thresholds {
		fmt.Fprintf(&b, "| %g |", p)
		for j := range t.BitWidths {
			fmt.Fprintf(&b, " %.4f |", t.Cells[i][j])
		}
		b.WriteString("\n")
	}

	return b.String()
}

// CheckEntry is the verdict for one bit-width.
type CheckEntry struct {
	BitWidth int
	MaxLog2K float64
	Margin   float64 // MaxLog2K - Log2K; negative when invalid
	Valid    bool
}

// Check compares a concrete permutation length against every bit-width's
// maximum allowed length.
type Check struct {
	Log2K   float64
	PCrit   float64
	Log2N   float64
	Entries []CheckEntry
}

// CheckLength marks each bit-width valid when log2K does not exceed its
// MaxLog2K for the given target and repetition count.
func CheckLength(log2K, pcrit, log2N float64, bitWidths []int) (Check, error) {
	check := Check{Log2K: log2K, PCrit: pcrit, Log2N: log2N}

	for _, m := range bitWidths {
		limit, err := MaxLog2K(pcrit, m, log2N)
		if err != nil {
			return Check{}, fmt.Errorf("m=%d: %w", m, err)
		}
		check.Entries = append(check.Entries, CheckEntry{
			BitWidth: m,
			MaxLog2K: limit,
			Margin:   limit - log2K,
			Valid:    log2K <= limit,
		})
	}

	return check, nil
}

// AnyValid reports whether at least one bit-width accepts the length.
func (c Check) AnyValid() bool {
	for _, e := range c.Entries {
		if e.Valid {
			return true
		}
	}
	return false
}

// Markdown renders the check as a pipe table with ✓/✗ markers.
func (c Check) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "log2(K) = %g, P_crit = %g, log2(N) = %g\n\n", c.Log2K, c.PCrit, c.Log2N)
	b.WriteString("| m | max log2(K) | margin | valid |\n|---:|---:|---:|:---:|\n")
	for _, e := range c.Entries {
		mark := "✗"
		if e.Valid {
			mark = "✓"
		}
		fmt.Fprintf(&b, "| %d | %.4f | %+.4f | %s |\n", e.BitWidth, e.MaxLog2K, e.Margin, mark)
	}

	return b.String()
}
