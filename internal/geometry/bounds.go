package geometry

import (
	"math"

	"github.com/banshee-data/hydroloc/internal/faults"
)

// Interval is a closed [Min, Max] range for one coordinate.
type Interval struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Width returns Max - Min.
func (iv Interval) Width() float64 {
	return iv.Max - iv.Min
}

// Contains reports whether v lies inside the closed interval.
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Min && v <= iv.Max
}

// Validate checks that both ends are finite and Min <= Max.
func (iv Interval) Validate() error {
	if math.IsNaN(iv.Min) || math.IsNaN(iv.Max) || math.IsInf(iv.Min, 0) || math.IsInf(iv.Max, 0) {
		return faults.Configurationf("interval [%g, %g] is not finite", iv.Min, iv.Max)
	}
	if iv.Min > iv.Max {
		return faults.Configurationf("interval min %g greater than max %g", iv.Min, iv.Max)
	}
	return nil
}

// Bounds holds the feasible interval of each axis for one receiver.
type Bounds [Axes]Interval

// Contains reports whether p lies inside the bounds on every axis.
func (b Bounds) Contains(p Point) bool {
	for k := 0; k < Axes; k++ {
		if !b[k].Contains(p.Axis(k)) {
			return false
		}
	}
	return true
}

// Validate checks every axis interval.
func (b Bounds) Validate() error {
	for k := 0; k < Axes; k++ {
		if err := b[k].Validate(); err != nil {
			return faults.Configurationf("axis %s: %v", AxisNames[k], err)
		}
	}
	return nil
}

// UniformBounds returns n identical bounds spanning [-half, half] on every axis.
func UniformBounds(n int, half float64) []Bounds {
	out := make([]Bounds, n)
	for i := range out {
		for k := 0; k < Axes; k++ {
			out[i][k] = Interval{Min: -half, Max: half}
		}
	}
	return out
}

// ValidateBounds checks a receiver bounds table.
func ValidateBounds(table []Bounds) error {
	if len(table) == 0 {
		return faults.Configurationf("receiver bounds table is empty")
	}
	for i, b := range table {
		if err := b.Validate(); err != nil {
			return faults.Configurationf("receiver %d: %v", i, err)
		}
	}
	return nil
}
