package geometry

import "github.com/banshee-data/hydroloc/internal/faults"

// Pair identifies two receivers whose arrival times are differenced.
// Ref is the reference receiver.
type Pair struct {
	Ref   int `json:"ref"`
	Other int `json:"other"`
}

// BuildPairs returns the n-1 pairs (ref, i) for every i != ref, in
// ascending order of i.
func BuildPairs(n, ref int) ([]Pair, error) {
	if n < 2 {
		return nil, faults.Rangef("need at least 2 receivers to build pairs, got %d", n)
	}
	if ref < 0 || ref >= n {
		return nil, faults.Rangef("reference receiver %d outside [0, %d)", ref, n)
	}
	pairs := make([]Pair, 0, n-1)
	for i := 0; i < n; i++ {
		if i == ref {
			continue
		}
		pairs = append(pairs, Pair{Ref: ref, Other: i})
	}
	return pairs, nil
}

// ValidatePairs checks that every pair addresses two distinct receivers
// of an n-receiver set.
func ValidatePairs(pairs []Pair, n int) error {
	for i, p := range pairs {
		if p.Ref < 0 || p.Ref >= n || p.Other < 0 || p.Other >= n {
			return faults.Rangef("pair %d (%d, %d) outside [0, %d)", i, p.Ref, p.Other, n)
		}
		if p.Ref == p.Other {
			return faults.Rangef("pair %d pairs receiver %d with itself", i, p.Ref)
		}
	}
	return nil
}
