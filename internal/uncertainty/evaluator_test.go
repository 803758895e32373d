package uncertainty

import (
	"errors"
	"testing"

	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"github.com/banshee-data/hydroloc/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func newTestEvaluator(t *testing.T, workers int) *Evaluator {
	t.Helper()
	points, err := grid.SphereSurface{Count: 40, Radius: 15}.Points()
	require.NoError(t, err)
	pairs, err := geometry.BuildPairs(len(tetrahedron), 0)
	require.NoError(t, err)
	return &Evaluator{
		Grid:          points,
		Pairs:         pairs,
		SoundSpeed:    soundSpeed,
		NoiseVariance: 1e-8,
		Workers:       workers,
	}
}

func TestEvaluatorCostIsMeanOfPointRMS(t *testing.T) {
	e := newTestEvaluator(t, 1)

	cost, err := e.Cost(tetrahedron)
	require.NoError(t, err)

	us, err := e.PointUncertainties(tetrahedron)
	require.NoError(t, err)
	require.Len(t, us, len(e.Grid))
	rms := make([]float64, len(us))
	for i, u := range us {
		rms[i] = u.RMS
	}
	assert.InDelta(t, stat.Mean(rms, nil), cost, 1e-15)
}

func TestEvaluatorParallelMatchesSequential(t *testing.T) {
	seq, err := newTestEvaluator(t, 1).Cost(tetrahedron)
	require.NoError(t, err)
	for _, workers := range []int{0, 2, 8} {
		par, err := newTestEvaluator(t, workers).Cost(tetrahedron)
		require.NoError(t, err)
		assert.Equal(t, seq, par, "workers=%d", workers)
	}
}

func TestEvaluatorReductions(t *testing.T) {
	e := newTestEvaluator(t, 2)
	mean, err := e.Cost(tetrahedron)
	require.NoError(t, err)

	e.Reduce = ReduceMax
	maxCost, err := e.Cost(tetrahedron)
	require.NoError(t, err)

	e.Reduce = ReduceMedian
	median, err := e.Cost(tetrahedron)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, maxCost, mean)
	assert.GreaterOrEqual(t, maxCost, median)
}

func TestEvaluatorDegenerateLayout(t *testing.T) {
	e := newTestEvaluator(t, 4)
	layout := tetrahedron.With(0, 0, e.Grid[7].X).With(0, 1, e.Grid[7].Y).With(0, 2, e.Grid[7].Z)

	_, err := e.Cost(layout)
	require.Error(t, err)
	assert.True(t, faults.IsInfeasible(err))
	assert.Contains(t, err.Error(), "evaluation point 7")
}

func TestEvaluatorValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(e *Evaluator)
	}{
		{"empty_grid", func(e *Evaluator) { e.Grid = nil }},
		{"no_pairs", func(e *Evaluator) { e.Pairs = nil }},
		{"zero_speed", func(e *Evaluator) { e.SoundSpeed = 0 }},
		{"negative_noise", func(e *Evaluator) { e.NoiseVariance = -1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEvaluator(t, 1)
			tc.mutate(e)
			_, err := e.Cost(tetrahedron)
			assert.True(t, errors.Is(err, faults.ErrConfiguration), "got %v", err)
		})
	}
}

func TestReduceMedian(t *testing.T) {
	testCases := []struct {
		name  string
		input []float64
		want  float64
	}{
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := append([]float64(nil), tc.input...)
			assert.Equal(t, tc.want, ReduceMedian(in))
			assert.Equal(t, tc.input, in, "input reordered")
		})
	}
}

func TestParseReduction(t *testing.T) {
	xs := []float64{1, 2, 9}
	for name, want := range map[string]float64{"": 4, "mean": 4, "max": 9, "median": 2} {
		r, err := ParseReduction(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, r(xs), name)
	}
	_, err := ParseReduction("p95")
	assert.True(t, errors.Is(err, faults.ErrConfiguration))
}
