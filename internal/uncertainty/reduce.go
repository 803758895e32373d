package uncertainty

import (
	"sort"

	"github.com/banshee-data/hydroloc/internal/faults"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Reduction collapses per-point RMS uncertainties into one cost.
type Reduction func(rms []float64) float64

// ReduceMean averages the per-point uncertainties. This is the default.
func ReduceMean(rms []float64) float64 {
	return stat.Mean(rms, nil)
}

// ReduceMax returns the worst per-point uncertainty.
func ReduceMax(rms []float64) float64 {
	return floats.Max(rms)
}

// ReduceMedian returns the median uncertainty, averaging the two middle
// values for an even count.
func ReduceMedian(rms []float64) float64 {
	sorted := make([]float64, len(rms))
	copy(sorted, rms)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ParseReduction maps a configuration name to a Reduction. The empty string
// selects the mean.
func ParseReduction(name string) (Reduction, error) {
	switch name {
	case "", "mean":
		return ReduceMean, nil
	case "max":
		return ReduceMax, nil
	case "median":
		return ReduceMedian, nil
	}
	return nil, faults.Configurationf("unknown cost reduction %q (want mean, max or median)", name)
}
