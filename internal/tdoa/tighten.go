package tdoa

import (
	"github.com/banshee-data/hydroloc/internal/faults"
	"gonum.org/v1/gonum/floats"
)

// TightenLimits returns the sample range [start, stop] holding the central
// energyPercent of the signal's cumulative energy. Use it to trim a
// detection snippet before correlation.
func TightenLimits(signal []float64, energyPercent float64) (start, stop int, err error) {
	if !(energyPercent > 0 && energyPercent <= 100) {
		return 0, 0, faults.Configurationf("energy percentage must be in (0, 100], got %g", energyPercent)
	}
	if len(signal) == 0 {
		return 0, 0, faults.Rangef("empty signal")
	}

	energy := make([]float64, len(signal))
	for i, v := range signal {
		energy[i] = v * v
	}
	cumul := floats.CumSum(make([]float64, len(energy)), energy)
	total := cumul[len(cumul)-1]
	if total == 0 {
		return 0, 0, faults.Numericalf("signal has no energy")
	}
	floats.Scale(1/total, cumul)

	lo := (1 - energyPercent/100) / 2
	hi := 1 - lo
	start, stop = -1, -1
	for i, c := range cumul {
		if start < 0 && c > lo {
			start = i
		}
		if c > hi {
			stop = i
			break
		}
	}
	if stop < 0 {
		// energyPercent of 100 leaves hi at 1, which nothing exceeds.
		for i, c := range cumul {
			if c >= hi {
				stop = i
				break
			}
		}
	}
	return start, stop, nil
}
