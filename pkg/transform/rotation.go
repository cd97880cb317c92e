package transform

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// orthoTol bounds |RᵀR - I| and |det R - 1| for an accepted rotation.
const orthoTol = 1e-9

// RotationSpec describes a rotation. The set of specs is closed: AxisAngle,
// Euler and Quaternion.
type RotationSpec interface {
	// Unit returns the rotation as a unit quaternion.
	Unit() (quat.Number, error)
	String() string

	isRotationSpec()
}

// AxisAngle rotates by Angle about Axis (right handed). Axis need not be
// normalized but must be nonzero.
type AxisAngle struct {
	Axis    r3.Vec
	Angle   float64
	Degrees bool
}

func (a AxisAngle) Unit() (quat.Number, error) {
	n := r3.Norm(a.Axis)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return quat.Number{}, fmt.Errorf("%w: rotation axis %v has no direction", ErrInvalidParameter, a.Axis)
	}
	return axisQuat(r3.Scale(1/n, a.Axis), radians(a.Angle, a.Degrees)), nil
}

func (a AxisAngle) String() string {
	return fmt.Sprintf("axis [%g %g %g] angle %g%s", a.Axis.X, a.Axis.Y, a.Axis.Z, a.Angle, unitSuffix(a.Degrees))
}

func (AxisAngle) isRotationSpec() {}

// Euler composes elemental rotations about the axes named in Sequence, one
// angle per axis. Lower case axes ("xyz") are extrinsic, rotating about the
// fixed frame; upper case axes ("XYZ") are intrinsic, rotating about the
// moving frame. Cases cannot be mixed and an axis cannot follow itself.
type Euler struct {
	Sequence string
	Angles   []float64
	Degrees  bool
}

func (e Euler) Unit() (quat.Number, error) {
	seq := e.Sequence
	if len(seq) < 1 || len(seq) > 3 {
		return quat.Number{}, fmt.Errorf("%w: euler sequence %q must name 1 to 3 axes", ErrInvalidParameter, seq)
	}
	if len(e.Angles) != len(seq) {
		return quat.Number{}, fmt.Errorf("%w: euler sequence %q needs %d angles, got %d", ErrInvalidParameter, seq, len(seq), len(e.Angles))
	}
	extrinsic := strings.ToLower(seq) == seq
	intrinsic := strings.ToUpper(seq) == seq
	if extrinsic == intrinsic {
		return quat.Number{}, fmt.Errorf("%w: euler sequence %q mixes intrinsic and extrinsic axes", ErrInvalidParameter, seq)
	}

	q := quat.Number{Real: 1}
	for i, c := range strings.ToLower(seq) {
		if i > 0 && seq[i] == seq[i-1] {
			return quat.Number{}, fmt.Errorf("%w: euler sequence %q repeats consecutive axes", ErrInvalidParameter, seq)
		}
		var axis r3.Vec
		switch c {
		case 'x':
			axis = r3.Vec{X: 1}
		case 'y':
			axis = r3.Vec{Y: 1}
		case 'z':
			axis = r3.Vec{Z: 1}
		default:
			return quat.Number{}, fmt.Errorf("%w: euler sequence %q has unknown axis %q", ErrInvalidParameter, seq, c)
		}
		elem := axisQuat(axis, radians(e.Angles[i], e.Degrees))
		if extrinsic {
			q = quat.Mul(elem, q)
		} else {
			q = quat.Mul(q, elem)
		}
	}
	return q, nil
}

func (e Euler) String() string {
	return fmt.Sprintf("euler %q angles %v%s", e.Sequence, e.Angles, unitSuffix(e.Degrees))
}

func (Euler) isRotationSpec() {}

// Quaternion rotates by Q, which is normalized before use.
type Quaternion struct {
	Q quat.Number
}

func (q Quaternion) Unit() (quat.Number, error) {
	n := quat.Abs(q.Q)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return quat.Number{}, fmt.Errorf("%w: quaternion %v cannot be normalized", ErrInvalidParameter, q.Q)
	}
	return quat.Scale(1/n, q.Q), nil
}

func (q Quaternion) String() string {
	return fmt.Sprintf("quaternion %v", q.Q)
}

func (Quaternion) isRotationSpec() {}

// AlignVectors returns the shortest rotation taking the direction of from
// onto the direction of to. A zero vector yields a zero quaternion, which
// NewRotate rejects.
func AlignVectors(from, to r3.Vec) Quaternion {
	nf, nt := r3.Norm(from), r3.Norm(to)
	if nf == 0 || nt == 0 {
		return Quaternion{}
	}
	u, v := r3.Scale(1/nf, from), r3.Scale(1/nt, to)
	d := r3.Dot(u, v)
	if d < -1+1e-12 {
		// Antiparallel: half turn about any axis orthogonal to u.
		axis := r3.Cross(u, r3.Vec{X: 1})
		if r3.Norm(axis) < 1e-6 {
			axis = r3.Cross(u, r3.Vec{Y: 1})
		}
		axis = r3.Unit(axis)
		return Quaternion{Q: quat.Number{Imag: axis.X, Jmag: axis.Y, Kmag: axis.Z}}
	}
	c := r3.Cross(u, v)
	return Quaternion{Q: quat.Number{Real: 1 + d, Imag: c.X, Jmag: c.Y, Kmag: c.Z}}
}

// Rotate multiplies points by an orthonormal matrix. Its inverse multiplies
// by the transpose.
type Rotate struct {
	m    *mat.Dense
	spec RotationSpec
}

// NewRotate builds a rotate step from spec.
func NewRotate(spec RotationSpec) (Rotate, error) {
	if spec == nil {
		return Rotate{}, fmt.Errorf("%w: nil rotation spec", ErrInvalidParameter)
	}
	q, err := spec.Unit()
	if err != nil {
		return Rotate{}, err
	}
	m := quatMatrix(q)
	if !orthonormal(m) {
		return Rotate{}, fmt.Errorf("%w: %s does not produce an orthonormal matrix", ErrInvalidParameter, spec)
	}
	return Rotate{m: m, spec: spec}, nil
}

// Matrix returns a copy of the rotation matrix.
func (r Rotate) Matrix() *mat.Dense {
	return mat.DenseCopyOf(r.m)
}

func (Rotate) Kind() Kind { return KindRotate }

func (r Rotate) Apply(p r3.Vec) r3.Vec { return mulVec(r.m, p) }

func (r Rotate) Invert(p r3.Vec) r3.Vec { return mulVec(r.m.T(), p) }

func (r Rotate) String() string { return "Rotate with " + r.spec.String() }

func (Rotate) isStep() {}

func mulVec(m mat.Matrix, p r3.Vec) r3.Vec {
	return r3.Vec{
		X: m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)*p.Z,
		Y: m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)*p.Z,
		Z: m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)*p.Z,
	}
}

func axisQuat(unit r3.Vec, angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: s * unit.X, Jmag: s * unit.Y, Kmag: s * unit.Z}
}

func quatMatrix(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w),
		2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w),
		2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y),
	})
}

func orthonormal(m *mat.Dense) bool {
	var prod mat.Dense
	prod.Mul(m.T(), m)
	eye := mat.NewDiagDense(3, []float64{1, 1, 1})
	if !mat.EqualApprox(&prod, eye, orthoTol) {
		return false
	}
	return math.Abs(mat.Det(m)-1) <= orthoTol
}

func radians(angle float64, degrees bool) float64 {
	if degrees {
		return angle * math.Pi / 180
	}
	return angle
}

func unitSuffix(degrees bool) string {
	if degrees {
		return " deg"
	}
	return " rad"
}
