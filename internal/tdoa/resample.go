package tdoa

import (
	"math"

	"github.com/banshee-data/hydroloc/internal/faults"
	"gonum.org/v1/gonum/interp"
)

// Resample linearly interpolates a signal sampled at fs onto a grid with
// the given resolution in seconds. The new grid starts at the first sample
// and stops at or before the last one. It returns the resampled signal and
// its sampling frequency.
func Resample(signal []float64, fs, resolution float64) ([]float64, float64, error) {
	if !(fs > 0) || math.IsInf(fs, 0) {
		return nil, 0, faults.Configurationf("sampling frequency must be positive, got %g", fs)
	}
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return nil, 0, faults.Configurationf("resolution must be positive, got %g", resolution)
	}
	if len(signal) < 2 {
		out := make([]float64, len(signal))
		copy(out, signal)
		return out, 1 / resolution, nil
	}

	xs := make([]float64, len(signal))
	for i := range xs {
		xs[i] = float64(i) / fs
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, signal); err != nil {
		return nil, 0, faults.Numericalf("fit interpolant: %v", err)
	}

	last := xs[len(xs)-1]
	// Tolerate rounding so that an exact multiple keeps the final sample.
	count := int(math.Floor(last/resolution+1e-9)) + 1
	out := make([]float64, count)
	for i := range out {
		out[i] = pl.Predict(math.Min(float64(i)*resolution, last))
	}
	return out, 1 / resolution, nil
}
