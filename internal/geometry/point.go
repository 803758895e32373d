package geometry

import (
	"fmt"
	"math"
)

// Axes is the number of spatial dimensions of a Point.
const Axes = 3

// AxisNames labels the axes in exported tables and plots.
var AxisNames = [Axes]string{"x", "y", "z"}

// Point is a position in metres.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Axis returns the coordinate along axis k (0=x, 1=y, 2=z).
func (p Point) Axis(k int) float64 {
	switch k {
	case 0:
		return p.X
	case 1:
		return p.Y
	case 2:
		return p.Z
	}
	panic(fmt.Sprintf("geometry: axis %d out of range", k))
}

// WithAxis returns a copy of p with axis k set to v.
func (p Point) WithAxis(k int, v float64) Point {
	switch k {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	case 2:
		p.Z = v
	default:
		panic(fmt.Sprintf("geometry: axis %d out of range", k))
	}
	return p
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Norm returns the Euclidean length of p.
func (p Point) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// IsFinite reports whether every coordinate is a finite number.
func (p Point) IsFinite() bool {
	for k := 0; k < Axes; k++ {
		v := p.Axis(k)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return a.Sub(b).Norm()
}

func (p Point) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", p.X, p.Y, p.Z)
}
