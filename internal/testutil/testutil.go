// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorIs fails the test unless errors.Is(err, target).
func AssertErrorIs(t testing.TB, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// AssertInDelta fails the test if got and want differ by more than delta.
func AssertInDelta(t testing.TB, got, want, delta float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > delta {
		t.Errorf("got %g, want %g ± %g", got, want, delta)
	}
}

// TempDBPath returns a SQLite file path inside a per-test temp directory.
func TempDBPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// Pulse returns n samples holding a Gaussian-windowed tone burst centred on
// sample centre. width is the envelope standard deviation in samples and
// cycles the number of carrier periods per width.
func Pulse(n int, centre, width, cycles float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		d := (float64(i) - centre) / width
		out[i] = math.Exp(-0.5*d*d) * math.Cos(2*math.Pi*cycles*d)
	}
	return out
}

// Shift delays x by k samples (advances it for negative k), zero-filling the
// vacated samples. The length is unchanged.
func Shift(x []float64, k int) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		j := i - k
		if j >= 0 && j < len(x) {
			out[i] = x[j]
		}
	}
	return out
}
