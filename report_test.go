package sortbias

import (
	"strings"
	"testing"
)

func TestReport_Markdown(t *testing.T) {
	report := DefaultReport()
	report.Estimates = []NamedEstimate{
		{Source: "float32", Nominal: 32, Estimate: Estimate{Bits: 24.01, ObservedCollisions: 128}},
	}
	report.Simulation = &SimulationResult{
		Config:        DefaultSimulationConfig(),
		Trials:        4000,
		Pairs:         508000,
		ObservedBias:  0.0105,
		TieBias:       0.0299,
		PredictedBias: 0.0310,
		ZFair:         14.9,
	}

	md, err := report.Markdown()
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}

	for _, want := range []string{
		"# " + report.Title,
		"## Model",
		"## Maximum log2(K), log2(N) = 0",
		"## Maximum log2(K), log2(N) = 10",
		"## Maximum log2(K), log2(N) = 20",
		"| 0.55 | 15.3384 | 20.6717 | 42.0051 |",
		"## Length checks",
		"## Effective bit-width of key sources",
		"| float32 | 32 | 24.010 |",
		"## Simulation",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestReport_OptionalSections(t *testing.T) {
	report := DefaultReport()
	report.Checks = nil

	md, err := report.Markdown()
	if err != nil {
		t.Fatal(err)
	}
	for _, absent := range []string{"## Length checks", "## Effective bit-width", "## Simulation"} {
		if strings.Contains(md, absent) {
			t.Errorf("Section %q should be omitted", absent)
		}
	}
}

func TestReport_InvalidThreshold(t *testing.T) {
	report := DefaultReport()
	report.Thresholds = []float64{0.5}

	if _, err := report.Markdown(); err == nil {
		t.Error("Threshold 0.5 should fail the report")
	}
	if _, err := report.HTML(); err == nil {
		t.Error("HTML should propagate the markdown error")
	}
}

func TestReport_HTML(t *testing.T) {
	page, err := DefaultReport().HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}

	html := string(page)
	for _, want := range []string{"<html", "<title>", "<table>", "<h2", "15.3384"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	t.Logf("✓ HTML report: %d bytes", len(page))
}
