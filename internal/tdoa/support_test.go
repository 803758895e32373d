package tdoa

import (
	"errors"
	"testing"

	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResample(t *testing.T) {
	testCases := []struct {
		name       string
		signal     []float64
		fs         float64
		resolution float64
		want       []float64
		wantFs     float64
	}{
		{
			name:       "halve_step",
			signal:     []float64{0, 2, 4, 2, 0},
			fs:         1,
			resolution: 0.5,
			want:       []float64{0, 1, 2, 3, 4, 3, 2, 1, 0},
			wantFs:     2,
		},
		{
			name:       "stops_before_last_sample",
			signal:     []float64{0, 10, 20},
			fs:         1,
			resolution: 0.8,
			want:       []float64{0, 8, 16},
			wantFs:     1.25,
		},
		{
			name:       "single_sample",
			signal:     []float64{3},
			fs:         100,
			resolution: 0.001,
			want:       []float64{3},
			wantFs:     1000,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, gotFs, err := Resample(tc.signal, tc.fs, tc.resolution)
			require.NoError(t, err)
			assert.InDelta(t, tc.wantFs, gotFs, 1e-9)
			require.Len(t, got, len(tc.want))
			for i := range got {
				assert.InDelta(t, tc.want[i], got[i], 1e-9, "sample %d", i)
			}
		})
	}

	_, _, err := Resample([]float64{1, 2}, 0, 0.1)
	assert.True(t, errors.Is(err, faults.ErrConfiguration))
	_, _, err = Resample([]float64{1, 2}, 10, 0)
	assert.True(t, errors.Is(err, faults.ErrConfiguration))
}

func TestTightenLimits(t *testing.T) {
	burst := []float64{0, 0, 1, 1, 1, 1, 0, 0}
	testCases := []struct {
		name      string
		percent   float64
		wantStart int
		wantStop  int
	}{
		{"ninety", 90, 2, 5},
		{"all", 100, 2, 5},
		{"half", 50, 3, 5},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			start, stop, err := TightenLimits(burst, tc.percent)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantStop, stop)
		})
	}

	_, _, err := TightenLimits(make([]float64, 4), 90)
	assert.True(t, errors.Is(err, faults.ErrNumerical))
	_, _, err = TightenLimits(burst, 0)
	assert.True(t, errors.Is(err, faults.ErrConfiguration))
	_, _, err = TightenLimits(nil, 90)
	assert.True(t, errors.Is(err, faults.ErrRange))
}

func TestSearchWindow(t *testing.T) {
	layout := geometry.Layout{{X: 0}, {X: 3, Y: 4}, {X: -1}}
	w, err := SearchWindow(layout, 1484)
	require.NoError(t, err)
	// Receivers 1 and 2 are sqrt(16+16) apart.
	assert.InDelta(t, 5.656854249492381/1484, w, 1e-15)

	_, err = SearchWindow(layout, 0)
	assert.True(t, errors.Is(err, faults.ErrConfiguration))
	_, err = SearchWindow(layout[:1], 1484)
	assert.True(t, errors.Is(err, faults.ErrRange))
}
