package tdoa

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/monitoring"
	"github.com/banshee-data/hydroloc/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fs = 48000.0

func pulse() []float64 {
	return testutil.Pulse(512, 256, 8, 1.5)
}

func TestCorrelateMatchesDirectSum(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, sizes := range [][2]int{{1, 1}, {5, 3}, {3, 5}, {17, 17}, {64, 40}} {
		a := make([]float64, sizes[0])
		b := make([]float64, sizes[1])
		for i := range a {
			a[i] = rng.NormFloat64()
		}
		for i := range b {
			b[i] = rng.NormFloat64()
		}

		got := correlate(a, b)
		require.Len(t, got, len(a)+len(b)-1)
		for i, v := range got {
			lag := i - (len(b) - 1)
			assert.InDelta(t, dotAtLag(a, b, lag), v, 1e-9, "sizes %v lag %d", sizes, lag)
		}
	}
}

func TestEstimateSelfCorrelation(t *testing.T) {
	x := pulse()
	res, err := Estimate([][]float64{x, x}, []geometry.Pair{{Ref: 0, Other: 1}, {Ref: 1, Other: 1}}, fs, Options{})
	require.NoError(t, err)
	for _, r := range res {
		require.NoError(t, r.Err)
		assert.Equal(t, 0, r.Lag)
		assert.Equal(t, 0.0, r.Delay)
		assert.InDelta(t, 1.0, r.Correlation, 1e-12)
	}
}

func TestEstimateIntegerShift(t *testing.T) {
	x := pulse()
	for _, k := range []int{-37, -7, -1, 1, 3, 12, 90} {
		t.Run(fmt.Sprintf("shift_%d", k), func(t *testing.T) {
			waveforms := [][]float64{testutil.Shift(x, k), x}
			res, err := Estimate(waveforms, []geometry.Pair{{Ref: 0, Other: 1}}, fs, Options{})
			require.NoError(t, err)
			require.NoError(t, res[0].Err)
			assert.Equal(t, k, res[0].Lag)
			assert.InDelta(t, float64(k)/fs, res[0].Delay, 1e-15)
			assert.InDelta(t, 1.0, res[0].Correlation, 1e-6)

			// Swapping the pair flips the sign.
			res, err = Estimate(waveforms, []geometry.Pair{{Ref: 1, Other: 0}}, fs, Options{})
			require.NoError(t, err)
			assert.Equal(t, -k, res[0].Lag)
		})
	}
}

func TestEstimateWindowBound(t *testing.T) {
	x := pulse()
	waveforms := [][]float64{testutil.Shift(x, 40), x, testutil.Shift(x, -25), testutil.Shift(x, 4)}
	pairs, _ := geometry.BuildPairs(len(waveforms), 1)

	window := 10 / fs
	res, err := Estimate(waveforms, pairs, fs, Options{MaxTDOA: window})
	require.NoError(t, err)
	for _, r := range res {
		require.NoError(t, r.Err)
		assert.LessOrEqual(t, math.Abs(r.Delay), window+1e-15, "pair %v", r.Pair)
	}
	// The in-window shift is still found exactly. Channel 3 lags the
	// reference, so the delay is negative.
	assert.Equal(t, -4, res[2].Lag)

	// Window edges are inclusive.
	res, err = Estimate(waveforms, []geometry.Pair{{Ref: 3, Other: 1}}, fs, Options{MaxTDOA: 4 / fs})
	require.NoError(t, err)
	assert.Equal(t, 4, res[0].Lag)
}

func TestEstimatePerPairErrors(t *testing.T) {
	x := pulse()
	short := x[250:262]
	silent := make([]float64, len(x))
	waveforms := [][]float64{x, testutil.Shift(x, 5), short, silent}

	pairs := []geometry.Pair{
		{Ref: 0, Other: 1}, // ok
		{Ref: 0, Other: 2}, // window longer than the short channel
		{Ref: 0, Other: 3}, // silent channel
		{Ref: 0, Other: 9}, // no such channel
		{Ref: 1, Other: 0}, // ok
	}
	res, err := Estimate(waveforms, pairs, fs, Options{MaxTDOA: 20 / fs})
	require.NoError(t, err)
	require.Len(t, res, len(pairs))

	for i, p := range pairs {
		assert.Equal(t, p, res[i].Pair, "results must keep pair order")
	}
	assert.NoError(t, res[0].Err)
	assert.Equal(t, -5, res[0].Lag)
	assert.True(t, errors.Is(res[1].Err, faults.ErrRange), "got %v", res[1].Err)
	assert.True(t, errors.Is(res[2].Err, faults.ErrNumerical), "got %v", res[2].Err)
	assert.True(t, errors.Is(res[3].Err, faults.ErrRange), "got %v", res[3].Err)
	assert.NoError(t, res[4].Err)
	assert.Equal(t, 5, res[4].Lag)
}

func TestEstimateBatchErrors(t *testing.T) {
	x := pulse()
	pairs := []geometry.Pair{{Ref: 0, Other: 1}}
	testCases := []struct {
		name      string
		waveforms [][]float64
		fs        float64
		opts      Options
	}{
		{"zero_fs", [][]float64{x, x}, 0, Options{}},
		{"no_waveforms", nil, fs, Options{}},
		{"negative_window", [][]float64{x, x}, fs, Options{MaxTDOA: -1}},
		{"negative_resolution", [][]float64{x, x}, fs, Options{UpsampleResolution: -1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Estimate(tc.waveforms, pairs, tc.fs, tc.opts)
			assert.True(t, errors.Is(err, faults.ErrConfiguration), "got %v", err)
		})
	}
}

func TestEstimateUpsampling(t *testing.T) {
	const lowFs = 8000.0
	x := testutil.Pulse(256, 128, 10, 1)
	waveforms := [][]float64{testutil.Shift(x, 3), x}

	res, err := Estimate(waveforms, []geometry.Pair{{Ref: 0, Other: 1}}, lowFs, Options{UpsampleResolution: 1 / (4 * lowFs)})
	require.NoError(t, err)
	require.NoError(t, res[0].Err)
	assert.Equal(t, 12, res[0].Lag)
	assert.InDelta(t, 3/lowFs, res[0].Delay, 1e-12)
	assert.InDelta(t, 4*lowFs, res[0].SamplingFrequency, 1e-6)
	assert.InDelta(t, res[0].Delay, float64(res[0].Lag)/res[0].SamplingFrequency, 1e-12)
}

func TestEstimateCoarseUpsamplingIsNoop(t *testing.T) {
	original := monitoring.Logf
	defer func() { monitoring.Logf = original }()
	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, v...))
	})

	x := pulse()
	waveforms := [][]float64{testutil.Shift(x, 6), x}
	pairs := []geometry.Pair{{Ref: 0, Other: 1}}

	plain, err := Estimate(waveforms, pairs, fs, Options{})
	require.NoError(t, err)
	coarse, err := Estimate(waveforms, pairs, fs, Options{UpsampleResolution: 2 / fs})
	require.NoError(t, err)

	if diff := cmp.Diff(plain, coarse); diff != "" {
		t.Errorf("coarse upsampling changed results (-plain +coarse):\n%s", diff)
	}
	require.Len(t, logged, 1)
	assert.True(t, strings.HasPrefix(logged[0], "WARNING: upsampling not applied"))
}

func TestEstimateDoesNotMutateInput(t *testing.T) {
	x := pulse()
	y := testutil.Shift(x, 9)
	for i := range y {
		y[i] *= 7
	}
	waveforms := [][]float64{x, y}
	snapshot := [][]float64{append([]float64(nil), x...), append([]float64(nil), y...)}

	res, err := Estimate(waveforms, []geometry.Pair{{Ref: 1, Other: 0}}, fs, Options{
		Normalize:          true,
		UpsampleResolution: 1 / (2 * fs),
	})
	require.NoError(t, err)
	require.NoError(t, res[0].Err)
	assert.Equal(t, 18, res[0].Lag)

	if diff := cmp.Diff(snapshot, waveforms); diff != "" {
		t.Errorf("input waveforms modified (-before +after):\n%s", diff)
	}
}

func TestEstimateNormalizeKeepsDelay(t *testing.T) {
	x := pulse()
	loud := testutil.Shift(x, -11)
	for i := range loud {
		loud[i] *= 40
	}
	res, err := Estimate([][]float64{loud, x}, []geometry.Pair{{Ref: 0, Other: 1}}, fs, Options{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, -11, res[0].Lag)
	assert.InDelta(t, 1.0, res[0].Correlation, 1e-6)
}

func TestEstimateWorkersDeterministic(t *testing.T) {
	x := pulse()
	waveforms := make([][]float64, 6)
	for i := range waveforms {
		waveforms[i] = testutil.Shift(x, 3*i-7)
	}
	pairs, _ := geometry.BuildPairs(len(waveforms), 2)

	seq, err := Estimate(waveforms, pairs, fs, Options{Workers: 1})
	require.NoError(t, err)
	par, err := Estimate(waveforms, pairs, fs, Options{Workers: 8})
	require.NoError(t, err)
	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("worker count changed results (-1 +8):\n%s", diff)
	}
	for i, r := range seq {
		want := 3*r.Pair.Ref - 3*r.Pair.Other
		assert.Equal(t, want, r.Lag, "pair %d", i)
	}
}
