package tdoa

import (
	"math"
	"runtime"

	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/monitoring"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Options controls an estimation batch. Zero values disable each feature.
type Options struct {
	// MaxTDOA limits the search to lags within ±MaxTDOA seconds.
	MaxTDOA float64
	// UpsampleResolution resamples every channel to this time step in
	// seconds when it is finer than the input sampling interval.
	UpsampleResolution float64
	// Normalize scales each channel to a peak absolute amplitude of 1.
	Normalize bool
	// Workers bounds concurrent pair correlations. Zero means GOMAXPROCS.
	Workers int
}

// Result is the estimate for one receiver pair. When Err is set Delay, Lag
// and Correlation are zero.
type Result struct {
	Pair        geometry.Pair
	Delay       float64 // seconds
	Lag         int     // samples at SamplingFrequency
	Correlation float64 // normalised peak value in [-1, 1]

	// SamplingFrequency is the rate the channels were correlated at: the
	// input rate, or the upsampled rate when upsampling was applied.
	SamplingFrequency float64
	Err               error
}

// Estimate measures the delay of every pair in one batch. waveforms holds
// one channel per receiver and is never modified.
//
// Batch-level problems such as a non-positive sampling frequency are returned
// as the error. Problems specific to one pair (a bad index, a search window
// longer than the signals, a silent channel) are reported in that pair's
// Result.Err and the remaining pairs are still estimated.
func Estimate(waveforms [][]float64, pairs []geometry.Pair, fs float64, opts Options) ([]Result, error) {
	if !(fs > 0) || math.IsInf(fs, 0) {
		return nil, faults.Configurationf("sampling frequency must be positive, got %g", fs)
	}
	if len(waveforms) == 0 {
		return nil, faults.Configurationf("no waveforms")
	}
	if opts.MaxTDOA < 0 || math.IsNaN(opts.MaxTDOA) {
		return nil, faults.Configurationf("max TDOA must be non-negative, got %g", opts.MaxTDOA)
	}
	if opts.UpsampleResolution < 0 || math.IsNaN(opts.UpsampleResolution) {
		return nil, faults.Configurationf("upsample resolution must be non-negative, got %g", opts.UpsampleResolution)
	}

	channels, fs, err := prepare(waveforms, fs, opts)
	if err != nil {
		return nil, err
	}

	maxLag := -1
	if opts.MaxTDOA > 0 {
		maxLag = int(math.Round(opts.MaxTDOA * fs))
	}

	results := make([]Result, len(pairs))
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, p := range pairs {
		g.Go(func() error {
			results[i] = estimatePair(channels, p, fs, maxLag)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// prepare copies the channels and applies upsampling and normalisation.
func prepare(waveforms [][]float64, fs float64, opts Options) ([][]float64, float64, error) {
	channels := make([][]float64, len(waveforms))
	res := opts.UpsampleResolution
	upsample := res > 0 && res < 1/fs
	if res > 0 && !upsample {
		monitoring.Warnf("upsampling not applied: requested resolution %gs is not finer than the signal resolution %gs", res, 1/fs)
	}

	newFs := fs
	for i, w := range waveforms {
		if upsample {
			out, rfs, err := Resample(w, fs, res)
			if err != nil {
				return nil, 0, err
			}
			channels[i], newFs = out, rfs
		} else {
			channels[i] = append([]float64(nil), w...)
		}
		if opts.Normalize {
			normalize(channels[i])
		}
	}
	return channels, newFs, nil
}

func normalize(x []float64) {
	var peak float64
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak > 0 {
		floats.Scale(1/peak, x)
	}
}

func estimatePair(channels [][]float64, p geometry.Pair, fs float64, maxLag int) Result {
	r := Result{Pair: p, SamplingFrequency: fs}
	n := len(channels)
	if p.Ref < 0 || p.Ref >= n || p.Other < 0 || p.Other >= n {
		r.Err = faults.Rangef("pair (%d, %d) outside [0, %d)", p.Ref, p.Other, n)
		return r
	}
	s1, s2 := channels[p.Ref], channels[p.Other]
	if len(s1) == 0 || len(s2) == 0 {
		r.Err = faults.Rangef("pair (%d, %d): empty channel", p.Ref, p.Other)
		return r
	}
	norm := floats.Norm(s1, 2) * floats.Norm(s2, 2)
	if norm == 0 {
		r.Err = faults.Numericalf("pair (%d, %d): channel has no energy", p.Ref, p.Other)
		return r
	}

	minLag, maxAvail := -(len(s2) - 1), len(s1)-1
	lo, hi := minLag, maxAvail
	if maxLag >= 0 {
		if -maxLag < minLag || maxLag > maxAvail {
			r.Err = faults.Rangef("pair (%d, %d): search window ±%d samples exceeds lag range [%d, %d]",
				p.Ref, p.Other, maxLag, minLag, maxAvail)
			return r
		}
		lo, hi = -maxLag, maxLag
	}

	corr := correlate(s1, s2)
	window := corr[lo-minLag : hi-minLag+1]
	lag := floats.MaxIdx(window) + lo

	r.Lag = lag
	r.Delay = float64(lag) / fs
	r.Correlation = dotAtLag(s1, s2, lag) / norm
	return r
}
