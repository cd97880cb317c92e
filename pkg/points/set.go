// Package points normalizes heterogeneous point containers into a canonical
// N×3 form and converts results back into the shape the caller asked for.
//
// A Set remembers whether it was built from a single 3-vector. Every
// operation in this module that maps points to points (or to per-point
// values) keeps that rank: one point in, one point out; N points in, N
// points out, even when N is 1.
package points

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// Format selects the container returned by Export.
type Format int

const (
	// FormatList exports plain slices ([]float64 or [][]float64).
	FormatList Format = iota
	// FormatArray exports gonum matrices (*mat.VecDense or *mat.Dense).
	FormatArray
)

// Set is an ordered collection of 3-D points carrying its input rank.
type Set struct {
	vecs   []r3.Vec
	single bool
}

// Single returns a rank-1 set holding one point.
func Single(v r3.Vec) Set {
	return Set{vecs: []r3.Vec{v}, single: true}
}

// Batch returns a rank-2 set holding a copy of vs.
func Batch(vs []r3.Vec) Set {
	c := make([]r3.Vec, len(vs))
	copy(c, vs)
	return Set{vecs: c}
}

// FromArray returns a rank-1 set from a fixed three element array.
func FromArray(a [3]float64) Set {
	return Single(r3.Vec{X: a[0], Y: a[1], Z: a[2]})
}

// FromRows builds a batch from rows of exactly three values.
func FromRows(rows [][]float64) (Set, error) {
	vecs := make([]r3.Vec, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return Set{}, fmt.Errorf("%w: row %d has %d components, want 3", ErrInvalidInput, i, len(row))
		}
		vecs[i] = r3.Vec{X: row[0], Y: row[1], Z: row[2]}
	}
	return Set{vecs: vecs}, nil
}

// FromMatrix builds a batch from an N×3 matrix. A mat.Vector of length 3 is
// treated as a single point.
func FromMatrix(m mat.Matrix) (Set, error) {
	if v, ok := m.(mat.Vector); ok {
		if v.Len() != 3 {
			return Set{}, fmt.Errorf("%w: vector has %d components, want 3", ErrInvalidInput, v.Len())
		}
		return Single(r3.Vec{X: v.AtVec(0), Y: v.AtVec(1), Z: v.AtVec(2)}), nil
	}
	r, c := m.Dims()
	if c != 3 {
		return Set{}, fmt.Errorf("%w: matrix has %d columns, want 3", ErrInvalidInput, c)
	}
	vecs := make([]r3.Vec, r)
	for i := range vecs {
		vecs[i] = r3.Vec{X: m.At(i, 0), Y: m.At(i, 1), Z: m.At(i, 2)}
	}
	return Set{vecs: vecs}, nil
}

// Parse coerces a loosely typed point container into a Set.
//
// Flat three element containers ([]float64, [3]float64, []int, r3.Vec) are
// single points. Nested containers, []r3.Vec and matrices are batches.
func Parse(v any) (Set, error) {
	switch t := v.(type) {
	case Set:
		return t, nil
	case r3.Vec:
		return Single(t), nil
	case [3]float64:
		return FromArray(t), nil
	case []float64:
		p, err := vecOf(t)
		if err != nil {
			return Set{}, err
		}
		return Single(p), nil
	case []int:
		p, err := vecOf(toFloats(t))
		if err != nil {
			return Set{}, err
		}
		return Single(p), nil
	case []r3.Vec:
		return Batch(t), nil
	case [][3]float64:
		vecs := make([]r3.Vec, len(t))
		for i, a := range t {
			vecs[i] = r3.Vec{X: a[0], Y: a[1], Z: a[2]}
		}
		return Set{vecs: vecs}, nil
	case [][]float64:
		return FromRows(t)
	case [][]int:
		rows := make([][]float64, len(t))
		for i, r := range t {
			rows[i] = toFloats(r)
		}
		return FromRows(rows)
	case []any:
		vecs := make([]r3.Vec, len(t))
		for i, cell := range t {
			p, err := ParseVec(cell)
			if err != nil {
				return Set{}, fmt.Errorf("row %d: %w", i, err)
			}
			vecs[i] = p
		}
		return Set{vecs: vecs}, nil
	case mat.Matrix:
		return FromMatrix(t)
	default:
		return Set{}, fmt.Errorf("%w: unsupported point container %T", ErrInvalidInput, v)
	}
}

// ParseVec coerces one vector-valued cell into a point. Strings are decoded
// as a YAML flow sequence ("[1, 2, 3]") or as whitespace separated values
// ("[1 2 3]").
func ParseVec(cell any) (r3.Vec, error) {
	switch t := cell.(type) {
	case r3.Vec:
		return t, nil
	case [3]float64:
		return r3.Vec{X: t[0], Y: t[1], Z: t[2]}, nil
	case []float64:
		return vecOf(t)
	case []int:
		return vecOf(toFloats(t))
	case []any:
		vals := make([]float64, len(t))
		for i, c := range t {
			f, err := cast.ToFloat64E(c)
			if err != nil {
				return r3.Vec{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			vals[i] = f
		}
		return vecOf(vals)
	case string:
		return parseVecString(t)
	default:
		return r3.Vec{}, fmt.Errorf("%w: cell of type %T is not a 3-vector", ErrInvalidInput, cell)
	}
}

func parseVecString(s string) (r3.Vec, error) {
	var vals []float64
	if err := yaml.Unmarshal([]byte(s), &vals); err == nil {
		return vecOf(vals)
	}
	fields := strings.Fields(strings.Trim(strings.TrimSpace(s), "[]()"))
	vals = make([]float64, len(fields))
	for i, f := range fields {
		v, err := cast.ToFloat64E(strings.TrimSuffix(f, ","))
		if err != nil {
			return r3.Vec{}, fmt.Errorf("%w: cannot parse %q as a 3-vector", ErrInvalidInput, s)
		}
		vals[i] = v
	}
	return vecOf(vals)
}

func vecOf(vals []float64) (r3.Vec, error) {
	if len(vals) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: got %d components, want 3", ErrInvalidInput, len(vals))
	}
	return r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

func toFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// Len returns the number of points.
func (s Set) Len() int { return len(s.vecs) }

// IsSingle reports whether the set was built from a single point.
func (s Set) IsSingle() bool { return s.single }

// At returns the i-th point.
func (s Set) At(i int) r3.Vec { return s.vecs[i] }

// Vec returns the first point. It is the point of a single set.
func (s Set) Vec() r3.Vec { return s.vecs[0] }

// Vecs returns a copy of the points.
func (s Set) Vecs() []r3.Vec {
	c := make([]r3.Vec, len(s.vecs))
	copy(c, s.vecs)
	return c
}

// Component returns coordinate i (0, 1 or 2) of every point.
func (s Set) Component(i int) []float64 {
	out := make([]float64, len(s.vecs))
	for j, p := range s.vecs {
		switch i {
		case 0:
			out[j] = p.X
		case 1:
			out[j] = p.Y
		case 2:
			out[j] = p.Z
		default:
			panic("points: illegal component")
		}
	}
	return out
}

// Map applies fn to every point, keeping the rank.
func (s Set) Map(fn func(r3.Vec) r3.Vec) Set {
	out := make([]r3.Vec, len(s.vecs))
	for i, p := range s.vecs {
		out[i] = fn(p)
	}
	return Set{vecs: out, single: s.single}
}

// Project maps every point to a scalar, keeping the rank.
func (s Set) Project(fn func(r3.Vec) float64) Values {
	out := make([]float64, len(s.vecs))
	for i, p := range s.vecs {
		out[i] = fn(p)
	}
	return Values{data: out, single: s.single}
}

// WithVecs returns a set holding vecs with the rank of s. vecs must have
// the same length as s.
func (s Set) WithVecs(vecs []r3.Vec) Set {
	if len(vecs) != len(s.vecs) {
		panic("points: length mismatch")
	}
	return Set{vecs: vecs, single: s.single}
}

// WithValues returns values with the rank of s. data must have the same
// length as s.
func (s Set) WithValues(data []float64) Values {
	if len(data) != len(s.vecs) {
		panic("points: length mismatch")
	}
	return Values{data: data, single: s.single}
}

// Truncate rounds every coordinate toward zero.
func (s Set) Truncate() Set {
	return s.Map(func(p r3.Vec) r3.Vec {
		return r3.Vec{X: math.Trunc(p.X), Y: math.Trunc(p.Y), Z: math.Trunc(p.Z)}
	})
}

// Rows returns the points as a list of lists.
func (s Set) Rows() [][]float64 {
	out := make([][]float64, len(s.vecs))
	for i, p := range s.vecs {
		out[i] = []float64{p.X, p.Y, p.Z}
	}
	return out
}

// Dense returns the points as an N×3 matrix, or nil for an empty set.
func (s Set) Dense() *mat.Dense {
	if len(s.vecs) == 0 {
		return nil
	}
	m := mat.NewDense(len(s.vecs), 3, nil)
	for i, p := range s.vecs {
		m.SetRow(i, []float64{p.X, p.Y, p.Z})
	}
	return m
}

// Export returns the points in the requested container. A single set
// exports as []float64 or *mat.VecDense, a batch as [][]float64 or
// *mat.Dense.
func (s Set) Export(f Format) any {
	if s.single {
		p := s.vecs[0]
		if f == FormatArray {
			return mat.NewVecDense(3, []float64{p.X, p.Y, p.Z})
		}
		return []float64{p.X, p.Y, p.Z}
	}
	if f == FormatArray {
		return s.Dense()
	}
	return s.Rows()
}

// Values holds one scalar per point, carrying the rank of the set it came
// from.
type Values struct {
	data   []float64
	single bool
}

// NewValues wraps data. single marks a rank-1 result and requires exactly
// one value.
func NewValues(data []float64, single bool) Values {
	if single && len(data) != 1 {
		panic("points: single values need exactly one element")
	}
	c := make([]float64, len(data))
	copy(c, data)
	return Values{data: c, single: single}
}

// Len returns the number of values.
func (v Values) Len() int { return len(v.data) }

// IsSingle reports whether the values came from a single point.
func (v Values) IsSingle() bool { return v.single }

// At returns the i-th value.
func (v Values) At(i int) float64 { return v.data[i] }

// Scalar returns the first value. It is the value of a single result.
func (v Values) Scalar() float64 { return v.data[0] }

// Slice returns a copy of the values.
func (v Values) Slice() []float64 {
	c := make([]float64, len(v.data))
	copy(c, v.data)
	return c
}

// Truncate rounds every value toward zero.
func (v Values) Truncate() Values {
	out := make([]float64, len(v.data))
	for i, x := range v.data {
		out[i] = math.Trunc(x)
	}
	return Values{data: out, single: v.single}
}

// Export returns a float64 for single values, otherwise a []float64 or a
// *mat.VecDense depending on f.
func (v Values) Export(f Format) any {
	if v.single {
		return v.data[0]
	}
	if f == FormatArray && len(v.data) > 0 {
		return mat.NewVecDense(len(v.data), v.Slice())
	}
	return v.Slice()
}
