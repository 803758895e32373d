package uncertainty

import (
	"runtime"

	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"golang.org/x/sync/errgroup"
)

// Evaluator scores a receiver layout by the expected localisation
// uncertainty over a fixed evaluation grid. It holds no mutable state and is
// safe for concurrent use.
type Evaluator struct {
	Grid          []geometry.Point
	Pairs         []geometry.Pair
	SoundSpeed    float64 // m/s
	NoiseVariance float64 // s²

	// Reduce collapses per-point RMS values; nil means ReduceMean.
	Reduce Reduction

	// Workers bounds the goroutines used per evaluation. Zero means
	// GOMAXPROCS; one evaluates the grid sequentially.
	Workers int
}

// Validate checks the static inputs of the evaluator.
func (e *Evaluator) Validate() error {
	if len(e.Grid) == 0 {
		return faults.Configurationf("evaluation grid is empty")
	}
	if len(e.Pairs) == 0 {
		return faults.Configurationf("no receiver pairs")
	}
	if !(e.SoundSpeed > 0) {
		return faults.Configurationf("sound speed must be positive, got %g", e.SoundSpeed)
	}
	if !(e.NoiseVariance > 0) {
		return faults.Configurationf("noise variance must be positive, got %g", e.NoiseVariance)
	}
	return nil
}

// Cost implements the optimizer objective. Any failing grid point aborts the
// evaluation; faults.ErrNumerical then marks the layout as infeasible.
func (e *Evaluator) Cost(layout geometry.Layout) (float64, error) {
	rms, err := e.pointRMS(layout)
	if err != nil {
		return 0, err
	}
	reduce := e.Reduce
	if reduce == nil {
		reduce = ReduceMean
	}
	return reduce(rms), nil
}

// PointUncertainties returns the per-point uncertainty breakdown in grid
// order.
func (e *Evaluator) PointUncertainties(layout geometry.Layout) ([]Uncertainty, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	out := make([]Uncertainty, len(e.Grid))
	err := e.forEachPoint(func(i int) error {
		u, err := e.evaluatePoint(layout, i)
		if err != nil {
			return err
		}
		out[i] = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Evaluator) pointRMS(layout geometry.Layout) ([]float64, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	rms := make([]float64, len(e.Grid))
	err := e.forEachPoint(func(i int) error {
		u, err := e.evaluatePoint(layout, i)
		if err != nil {
			return err
		}
		rms[i] = u.RMS
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rms, nil
}

func (e *Evaluator) evaluatePoint(layout geometry.Layout, i int) (Uncertainty, error) {
	j, err := Jacobian(layout, e.Grid[i], e.Pairs, e.SoundSpeed)
	if err != nil {
		return Uncertainty{}, fmtPointErr(i, err)
	}
	u, err := Estimate(j, e.NoiseVariance)
	if err != nil {
		return Uncertainty{}, fmtPointErr(i, err)
	}
	return u, nil
}

// forEachPoint runs fn for every grid index. Each call writes only its own
// slot, so results do not depend on scheduling.
func (e *Evaluator) forEachPoint(fn func(i int) error) error {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(e.Grid) == 1 {
		for i := range e.Grid {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range e.Grid {
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}
