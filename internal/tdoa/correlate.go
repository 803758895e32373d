package tdoa

import (
	"math/bits"

	"gonum.org/v1/gonum/dsp/fourier"
)

// correlate returns the full linear cross-correlation of a and b. Index i
// holds lag i-(len(b)-1).
func correlate(a, b []float64) []float64 {
	full := len(a) + len(b) - 1
	n := nextPow2(full)

	pa := make([]float64, n)
	copy(pa, a)
	pb := make([]float64, n)
	copy(pb, b)

	fft := fourier.NewFFT(n)
	ca := fft.Coefficients(nil, pa)
	cb := fft.Coefficients(nil, pb)
	for i := range ca {
		ca[i] *= complex(real(cb[i]), -imag(cb[i]))
	}
	circ := fft.Sequence(nil, ca)

	// circ[m] is Σ a[n+m]·b[n] with indices modulo n; negative lags wrap
	// to the tail.
	scale := 1 / float64(n)
	out := make([]float64, full)
	for i := range out {
		lag := i - (len(b) - 1)
		if lag < 0 {
			lag += n
		}
		out[i] = circ[lag] * scale
	}
	return out
}

// dotAtLag computes Σ a[n+lag]·b[n] directly.
func dotAtLag(a, b []float64, lag int) float64 {
	var sum float64
	for n := range b {
		m := n + lag
		if m < 0 || m >= len(a) {
			continue
		}
		sum += a[m] * b[n]
	}
	return sum
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
