package anneal

import "math/rand/v2"

// NewRand returns a PCG generator seeded from seed. Two generators built from
// the same seed produce the same stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
