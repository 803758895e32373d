package uncertainty

import (
	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
	"gonum.org/v1/gonum/mat"
)

// Jacobian returns the (len(pairs) x 3) sensitivity matrix of the TDOA
// model T(s) = (|s-R[p2]| - |s-R[p1]|) / speed with respect to the source
// position s.
func Jacobian(receivers geometry.Layout, s geometry.Point, pairs []geometry.Pair, speed float64) (*mat.Dense, error) {
	if !(speed > 0) {
		return nil, faults.Configurationf("wave speed must be positive, got %g", speed)
	}
	if len(pairs) == 0 {
		return nil, faults.Rangef("no receiver pairs")
	}
	if err := geometry.ValidatePairs(pairs, len(receivers)); err != nil {
		return nil, err
	}

	// Unit vectors towards s, scaled by 1/speed, for the receivers the pairs
	// name. Receivers outside every pair do not constrain the source.
	grad := make([]geometry.Point, len(receivers))
	used := make([]bool, len(receivers))
	for _, p := range pairs {
		used[p.Ref], used[p.Other] = true, true
	}
	for i, r := range receivers {
		if !used[i] {
			continue
		}
		diff := s.Sub(r)
		dist := diff.Norm()
		if dist == 0 {
			return nil, faults.Numericalf("source %v coincides with receiver %d", s, i)
		}
		grad[i] = geometry.Point{
			X: diff.X / dist / speed,
			Y: diff.Y / dist / speed,
			Z: diff.Z / dist / speed,
		}
	}

	j := mat.NewDense(len(pairs), geometry.Axes, nil)
	for row, p := range pairs {
		for k := 0; k < geometry.Axes; k++ {
			j.Set(row, k, grad[p.Other].Axis(k)-grad[p.Ref].Axis(k))
		}
	}
	return j, nil
}

// Jacobians builds one Jacobian per evaluation point, in grid order.
func Jacobians(receivers geometry.Layout, points []geometry.Point, pairs []geometry.Pair, speed float64) ([]*mat.Dense, error) {
	out := make([]*mat.Dense, len(points))
	for i, s := range points {
		j, err := Jacobian(receivers, s, pairs, speed)
		if err != nil {
			return nil, fmtPointErr(i, err)
		}
		out[i] = j
	}
	return out, nil
}
