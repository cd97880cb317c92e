package interpolation

import (
	"errors"
	"math"
	"testing"
)

// TestNewLinear verifies knot validation
func TestNewLinear(t *testing.T) {
	testCases := []struct {
		name   string
		xs, ys []float64
		valid  bool
	}{
		{"sorted", []float64{0, 1, 2}, []float64{0, 2, 4}, true},
		{"unsorted", []float64{2, 0, 1}, []float64{4, 0, 2}, true},
		{"single knot", []float64{0}, []float64{0}, false},
		{"length mismatch", []float64{0, 1}, []float64{0}, false},
		{"repeated x", []float64{0, 1, 1}, []float64{0, 1, 2}, false},
		{"nan", []float64{0, math.NaN()}, []float64{0, 1}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLinear(tc.xs, tc.ys)
			if tc.valid && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidKnots) {
				t.Errorf("Expected ErrInvalidKnots, got %v", err)
			}
		})
	}
}

// TestPredict verifies interpolation inside the knots and linear
// extrapolation outside them
func TestPredict(t *testing.T) {
	l, err := NewLinear([]float64{10, 0, 20}, []float64{1, 0, 5})
	if err != nil {
		t.Fatalf("Failed to build interpolant: %v", err)
	}

	testCases := []struct {
		x, expected float64
	}{
		{0, 0},
		{5, 0.5},
		{10, 1},
		{15, 3},
		{20, 5},
		{-10, -1}, // first segment slope 0.1
		{30, 9},   // last segment slope 0.4
	}

	for _, tc := range testCases {
		got := l.Predict(tc.x)
		if math.Abs(got-tc.expected) > 1e-12 {
			t.Errorf("Predict(%g): expected %g, got %g", tc.x, tc.expected, got)
		}
	}

	all := l.PredictAll([]float64{-10, 15})
	if len(all) != 2 || math.Abs(all[1]-3) > 1e-12 {
		t.Errorf("Unexpected PredictAll result %v", all)
	}

	if lo, hi := l.Domain(); lo != 0 || hi != 20 {
		t.Errorf("Expected domain [0, 20], got [%g, %g]", lo, hi)
	}
}
