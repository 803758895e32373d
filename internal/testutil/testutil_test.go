package testutil

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"
)

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertError(t *testing.T) {
	AssertError(t, errors.New("boom"))
}

func TestAssertErrorIs(t *testing.T) {
	base := errors.New("base")
	AssertErrorIs(t, fmt.Errorf("wrapped: %w", base), base)
}

func TestAssertInDelta(t *testing.T) {
	AssertInDelta(t, 1.0005, 1, 1e-3)
}

func TestTempDBPath(t *testing.T) {
	p := TempDBPath(t)
	if filepath.Base(p) != "test.db" {
		t.Errorf("TempDBPath() = %q, want test.db basename", p)
	}
}

func TestPulse(t *testing.T) {
	x := Pulse(200, 80, 6, 1)
	if len(x) != 200 {
		t.Fatalf("len = %d, want 200", len(x))
	}
	if x[80] != 1 {
		t.Errorf("peak sample = %g, want 1", x[80])
	}
	for i, v := range x {
		if math.Abs(v) > 1 {
			t.Errorf("sample %d = %g exceeds unit amplitude", i, v)
		}
	}
	if math.Abs(x[0]) > 1e-12 {
		t.Errorf("far tail = %g, want ~0", x[0])
	}
}

func TestShift(t *testing.T) {
	testCases := []struct {
		name string
		k    int
		want []float64
	}{
		{"delay", 2, []float64{0, 0, 1, 2}},
		{"advance", -1, []float64{2, 3, 4, 0}},
		{"none", 0, []float64{1, 2, 3, 4}},
		{"beyond", 9, []float64{0, 0, 0, 0}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := []float64{1, 2, 3, 4}
			got := Shift(in, tc.k)
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("Shift(%d) = %v, want %v", tc.k, got, tc.want)
				}
			}
			if in[0] != 1 || in[3] != 4 {
				t.Errorf("input mutated: %v", in)
			}
		})
	}
}
