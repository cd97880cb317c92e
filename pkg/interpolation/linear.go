// Package interpolation provides the one dimensional interpolants used to
// describe a streamline as a function of depth.
package interpolation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// ErrInvalidKnots is returned when knots cannot define a piecewise linear
// function: too few of them, mismatched lengths, NaNs or repeated x values.
var ErrInvalidKnots = errors.New("invalid interpolation knots")

// Linear is a piecewise linear interpolant that extrapolates linearly
// beyond its knots using the slope of the nearest end segment.
//
// A Linear is read-only after construction and safe for concurrent use.
type Linear struct {
	pl interp.PiecewiseLinear
	xs []float64
	ys []float64
}

// NewLinear fits an interpolant through (xs[i], ys[i]). The knots do not
// need to be sorted, but x values must be distinct.
func NewLinear(xs, ys []float64) (*Linear, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x values and %d y values", ErrInvalidKnots, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 knots, got %d", ErrInvalidKnots, len(xs))
	}
	if floats.HasNaN(xs) || floats.HasNaN(ys) {
		return nil, fmt.Errorf("%w: NaN knot", ErrInvalidKnots)
	}

	sx := make([]float64, len(xs))
	copy(sx, xs)
	inds := make([]int, len(xs))
	floats.Argsort(sx, inds)

	sy := make([]float64, len(ys))
	for i, j := range inds {
		sy[i] = ys[j]
	}
	for i := 1; i < len(sx); i++ {
		if sx[i] == sx[i-1] {
			return nil, fmt.Errorf("%w: repeated x value %g", ErrInvalidKnots, sx[i])
		}
	}

	l := &Linear{xs: sx, ys: sy}
	if err := l.pl.Fit(sx, sy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKnots, err)
	}
	return l, nil
}

// Predict evaluates the interpolant at x.
func (l *Linear) Predict(x float64) float64 {
	n := len(l.xs)
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x < l.xs[0]:
		return extrapolate(l.xs[0], l.ys[0], l.xs[1], l.ys[1], x)
	case x > l.xs[n-1]:
		return extrapolate(l.xs[n-2], l.ys[n-2], l.xs[n-1], l.ys[n-1], x)
	}
	return l.pl.Predict(x)
}

// PredictAll evaluates the interpolant at every x in xs.
func (l *Linear) PredictAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = l.Predict(x)
	}
	return out
}

// Domain returns the smallest and largest knot.
func (l *Linear) Domain() (lo, hi float64) {
	return l.xs[0], l.xs[len(l.xs)-1]
}

func extrapolate(x0, y0, x1, y1, x float64) float64 {
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}
