// Package transform composes invertible affine steps (scale, translate,
// rotate) into ordered sequences that move points between dataset native
// coordinates and an oriented, resolution independent frame.
package transform

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidParameter is returned when a step receives a malformed
// parameter: a wrong-length scale or translate vector, a rotation spec that
// does not yield an orthonormal matrix, or an unknown projection axis.
var ErrInvalidParameter = errors.New("invalid parameter")

// Kind tags the variant of a Step.
type Kind int

const (
	KindScale Kind = iota
	KindTranslate
	KindRotate
)

func (k Kind) String() string {
	switch k {
	case KindScale:
		return "scale"
	case KindTranslate:
		return "translate"
	case KindRotate:
		return "rotate"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Step is one affine point map with an exact inverse. The set of steps is
// closed: Scale, Translate and Rotate.
type Step interface {
	Kind() Kind
	Apply(p r3.Vec) r3.Vec
	Invert(p r3.Vec) r3.Vec
	String() string

	isStep()
}

// Factor is a scale factor resolved to one value per axis.
type Factor struct {
	v r3.Vec
}

// Uniform returns a factor that scales every axis by s.
func Uniform(s float64) Factor {
	return Factor{v: r3.Vec{X: s, Y: s, Z: s}}
}

// PerAxis returns a factor with an independent value per axis.
func PerAxis(x, y, z float64) Factor {
	return Factor{v: r3.Vec{X: x, Y: y, Z: z}}
}

// FactorOf builds a factor from one value (broadcast to all axes) or
// three values.
func FactorOf(vals []float64) (Factor, error) {
	switch len(vals) {
	case 1:
		return Uniform(vals[0]), nil
	case 3:
		return PerAxis(vals[0], vals[1], vals[2]), nil
	default:
		return Factor{}, fmt.Errorf("%w: scaling must be a single number or have three elements, got %d", ErrInvalidParameter, len(vals))
	}
}

// Vec returns the per-axis values.
func (f Factor) Vec() r3.Vec { return f.v }

// Scale multiplies each coordinate by its factor. Factors are expected to
// be nonzero.
type Scale struct {
	factor r3.Vec
}

// NewScale returns a scale step.
func NewScale(f Factor) Scale { return Scale{factor: f.v} }

func (Scale) Kind() Kind { return KindScale }

func (s Scale) Apply(p r3.Vec) r3.Vec {
	return r3.Vec{X: p.X * s.factor.X, Y: p.Y * s.factor.Y, Z: p.Z * s.factor.Z}
}

func (s Scale) Invert(p r3.Vec) r3.Vec {
	return r3.Vec{X: p.X / s.factor.X, Y: p.Y / s.factor.Y, Z: p.Z / s.factor.Z}
}

func (s Scale) String() string {
	return fmt.Sprintf("Scale by [%g %g %g]", s.factor.X, s.factor.Y, s.factor.Z)
}

func (Scale) isStep() {}

// Translate adds a fixed offset.
type Translate struct {
	offset r3.Vec
}

// NewTranslate returns a translate step from exactly three values.
func NewTranslate(offset []float64) (Translate, error) {
	if len(offset) != 3 {
		return Translate{}, fmt.Errorf("%w: translate must be a three element vector, got %d", ErrInvalidParameter, len(offset))
	}
	return Translate{offset: r3.Vec{X: offset[0], Y: offset[1], Z: offset[2]}}, nil
}

// NewTranslateVec returns a translate step by v.
func NewTranslateVec(v r3.Vec) Translate { return Translate{offset: v} }

func (Translate) Kind() Kind { return KindTranslate }

func (t Translate) Apply(p r3.Vec) r3.Vec { return r3.Add(p, t.offset) }

func (t Translate) Invert(p r3.Vec) r3.Vec { return r3.Sub(p, t.offset) }

func (t Translate) String() string {
	return fmt.Sprintf("Translate by [%g %g %g]", t.offset.X, t.offset.Y, t.offset.Z)
}

func (Translate) isStep() {}
