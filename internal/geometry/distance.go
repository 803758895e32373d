package geometry

import "gonum.org/v1/gonum/mat"

// DistanceMatrix returns the symmetric matrix of distances between every
// pair of receivers in l.
func DistanceMatrix(l Layout) *mat.SymDense {
	n := len(l)
	if n == 0 {
		return nil
	}
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, Distance(l[i], l[j]))
		}
	}
	return d
}

// MaxSeparation returns the largest distance between two receivers of l.
func MaxSeparation(l Layout) float64 {
	d := DistanceMatrix(l)
	if d == nil {
		return 0
	}
	return mat.Max(d)
}
