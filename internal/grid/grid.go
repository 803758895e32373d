// Package grid generates the evaluation points used to score a receiver
// layout: points on a sphere surface, inside a sphere, or filling a cube.
package grid

import (
	"math"

	"github.com/banshee-data/hydroloc/internal/faults"
	"github.com/banshee-data/hydroloc/internal/geometry"
)

// Generator produces an ordered sequence of evaluation points.
type Generator interface {
	Points() ([]geometry.Point, error)
}

// Kind names a generator in configuration files.
type Kind string

const (
	KindSphereSurface Kind = "sphere-surface"
	KindSphereVolume  Kind = "sphere-volume"
	KindCubeVolume    Kind = "cube-volume"
)

// SphereSurface spreads Count points over a sphere using the golden spiral.
// The sampling is deterministic.
type SphereSurface struct {
	Count  int
	Radius float64
	Origin geometry.Point
}

// Points implements Generator.
func (g SphereSurface) Points() ([]geometry.Point, error) {
	if g.Count <= 0 {
		return nil, faults.Configurationf("sphere surface point count must be positive, got %d", g.Count)
	}
	if err := validateRadiusOrigin(g.Radius, g.Origin); err != nil {
		return nil, err
	}

	n := float64(g.Count)
	golden := math.Pi * (1 + math.Sqrt(5))
	pts := make([]geometry.Point, g.Count)
	for i := range pts {
		idx := float64(i) + 0.5
		phi := math.Acos(1 - 2*idx/n)
		theta := golden * idx
		pts[i] = geometry.Point{
			X: g.Radius*math.Cos(theta)*math.Sin(phi) + g.Origin.X,
			Y: g.Radius*math.Sin(theta)*math.Sin(phi) + g.Origin.Y,
			Z: g.Radius*math.Cos(phi) + g.Origin.Z,
		}
	}
	return pts, nil
}

// SphereVolume is the cubic lattice of CubeVolume restricted to points no
// further than Radius from the origin.
type SphereVolume struct {
	Spacing float64
	Radius  float64
	Origin  geometry.Point
}

// Points implements Generator.
func (g SphereVolume) Points() ([]geometry.Point, error) {
	return lattice(g.Spacing, g.Radius, g.Origin, true)
}

// CubeVolume fills the cube [-Radius, Radius]^3 around the origin with a
// regular lattice of the given spacing.
type CubeVolume struct {
	Spacing float64
	Radius  float64
	Origin  geometry.Point
}

// Points implements Generator.
func (g CubeVolume) Points() ([]geometry.Point, error) {
	return lattice(g.Spacing, g.Radius, g.Origin, false)
}

// axisValues returns -r, -r+s, -r+2s, ... stopping before r+s.
func axisValues(spacing, radius float64) []float64 {
	count := int(math.Ceil((2*radius + spacing) / spacing))
	vals := make([]float64, count)
	for i := range vals {
		vals[i] = -radius + float64(i)*spacing
	}
	return vals
}

func lattice(spacing, radius float64, origin geometry.Point, sphere bool) ([]geometry.Point, error) {
	if !(spacing > 0) || math.IsInf(spacing, 0) {
		return nil, faults.Configurationf("grid spacing must be positive and finite, got %g", spacing)
	}
	if err := validateRadiusOrigin(radius, origin); err != nil {
		return nil, err
	}

	vals := axisValues(spacing, radius)
	pts := make([]geometry.Point, 0, len(vals)*len(vals)*len(vals))
	for _, x := range vals {
		for _, y := range vals {
			for _, z := range vals {
				if sphere && math.Sqrt(x*x+y*y+z*z) > radius {
					continue
				}
				pts = append(pts, geometry.Point{X: x + origin.X, Y: y + origin.Y, Z: z + origin.Z})
			}
		}
	}
	return pts, nil
}

func validateRadiusOrigin(radius float64, origin geometry.Point) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return faults.Configurationf("grid radius must be positive and finite, got %g", radius)
	}
	if !origin.IsFinite() {
		return faults.Configurationf("grid origin %v is not finite", origin)
	}
	return nil
}

// FromSpec builds a generator by kind. count is used by the sphere surface,
// spacing by the lattice kinds.
func FromSpec(kind Kind, count int, spacing, radius float64, origin geometry.Point) (Generator, error) {
	switch kind {
	case KindSphereSurface:
		return SphereSurface{Count: count, Radius: radius, Origin: origin}, nil
	case KindSphereVolume:
		return SphereVolume{Spacing: spacing, Radius: radius, Origin: origin}, nil
	case KindCubeVolume:
		return CubeVolume{Spacing: spacing, Radius: radius, Origin: origin}, nil
	}
	return nil, faults.Configurationf("unknown grid kind %q", kind)
}
