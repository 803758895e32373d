package anneal

import "github.com/banshee-data/hydroloc/internal/geometry"

// CostSample records one perturbation trial. Cost is the current cost after
// the accept/reject decision.
type CostSample struct {
	Temperature float64 `json:"temperature"`
	Cost        float64 `json:"cost"`
	Accepted    bool    `json:"accepted"`
	Receiver    int     `json:"receiver"`
	Axis        int     `json:"axis"`
}

// RateSample records the acceptance rate of one temperature step.
type RateSample struct {
	Temperature float64 `json:"temperature"`
	Rate        float64 `json:"rate"`
}

// Trace is the append-only history of a run. Costs and Layouts hold one
// entry per trial; AcceptanceRates holds one entry per temperature step.
type Trace struct {
	InitialLayout   geometry.Layout   `json:"initial_layout"`
	InitialCost     float64           `json:"initial_cost"`
	Costs           []CostSample      `json:"costs"`
	AcceptanceRates []RateSample      `json:"acceptance_rates"`
	Layouts         []geometry.Layout `json:"layouts"`
}

// BestCosts returns the running minimum cost, starting with the initial cost.
// The result has len(Costs)+1 entries.
func (t *Trace) BestCosts() []float64 {
	out := make([]float64, 0, len(t.Costs)+1)
	best := t.InitialCost
	out = append(out, best)
	for _, c := range t.Costs {
		if c.Cost < best {
			best = c.Cost
		}
		out = append(out, best)
	}
	return out
}

// Temperatures returns the temperature of every step in order.
func (t *Trace) Temperatures() []float64 {
	out := make([]float64, len(t.AcceptanceRates))
	for i, r := range t.AcceptanceRates {
		out[i] = r.Temperature
	}
	return out
}

// Accepted counts the accepted trials.
func (t *Trace) Accepted() int {
	n := 0
	for _, c := range t.Costs {
		if c.Accepted {
			n++
		}
	}
	return n
}
