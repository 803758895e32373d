package anneal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTraceBestCosts(t *testing.T) {
	tr := &Trace{
		InitialCost: 5,
		Costs: []CostSample{
			{Cost: 6}, {Cost: 4, Accepted: true}, {Cost: 4.5, Accepted: true}, {Cost: 1, Accepted: true},
		},
	}
	want := []float64{5, 5, 4, 4, 1}
	if diff := cmp.Diff(want, tr.BestCosts()); diff != "" {
		t.Errorf("BestCosts() mismatch (-want +got):\n%s", diff)
	}
	if got := tr.Accepted(); got != 3 {
		t.Errorf("Accepted() = %d, want 3", got)
	}
}

func TestTraceTemperatures(t *testing.T) {
	tr := &Trace{AcceptanceRates: []RateSample{{10, 0.9}, {9.5, 0.7}, {9.025, 0.4}}}
	want := []float64{10, 9.5, 9.025}
	if diff := cmp.Diff(want, tr.Temperatures()); diff != "" {
		t.Errorf("Temperatures() mismatch (-want +got):\n%s", diff)
	}
}
