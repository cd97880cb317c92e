package transform

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"standardtransform/pkg/points"
)

// Axis selects one coordinate of a point.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// ParseAxis accepts "x", "y", "z" (any case) or "0", "1", "2".
func ParseAxis(token string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "x", "0":
		return AxisX, nil
	case "y", "1":
		return AxisY, nil
	case "z", "2":
		return AxisZ, nil
	default:
		return 0, fmt.Errorf("%w: projection must be one of \"x\", \"y\", or \"z\", got %q", ErrInvalidParameter, token)
	}
}

// Of returns the selected coordinate of p.
func (a Axis) Of(p r3.Vec) float64 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	case AxisZ:
		return p.Z
	default:
		panic("transform: illegal axis")
	}
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Sequence is an ordered composition of affine steps.
//
// Steps are appended while the sequence is built. Once it is handed out for
// queries it must not be modified; from then on it is safe for concurrent
// use.
type Sequence struct {
	steps []Step
}

// NewSequence returns an empty sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Identity returns a sequence that maps every point to itself.
func Identity() *Sequence {
	return NewSequence()
}

// AddStep appends st.
func (s *Sequence) AddStep(st Step) {
	s.steps = append(s.steps, st)
}

// AddScale appends a scale step.
func (s *Sequence) AddScale(f Factor) {
	s.AddStep(NewScale(f))
}

// AddScaleValues appends a scale step from one broadcast value or three
// per-axis values.
func (s *Sequence) AddScaleValues(vals ...float64) error {
	f, err := FactorOf(vals)
	if err != nil {
		return err
	}
	s.AddScale(f)
	return nil
}

// AddTranslate appends a translate step from exactly three values.
func (s *Sequence) AddTranslate(offset []float64) error {
	t, err := NewTranslate(offset)
	if err != nil {
		return err
	}
	s.AddStep(t)
	return nil
}

// AddTranslateVec appends a translate step by v.
func (s *Sequence) AddTranslateVec(v r3.Vec) {
	s.AddStep(NewTranslateVec(v))
}

// AddRotate appends a rotate step built from spec.
func (s *Sequence) AddRotate(spec RotationSpec) error {
	r, err := NewRotate(spec)
	if err != nil {
		return err
	}
	s.AddStep(r)
	return nil
}

// Steps returns the steps in application order.
func (s *Sequence) Steps() []Step {
	c := make([]Step, len(s.steps))
	copy(c, s.steps)
	return c
}

// Len returns the number of steps.
func (s *Sequence) Len() int { return len(s.steps) }

// ApplyVec maps p through every step, first to last.
func (s *Sequence) ApplyVec(p r3.Vec) r3.Vec {
	for _, st := range s.steps {
		p = st.Apply(p)
	}
	return p
}

// InvertVec maps p through the inverse of every step, last to first.
func (s *Sequence) InvertVec(p r3.Vec) r3.Vec {
	for i := len(s.steps) - 1; i >= 0; i-- {
		p = s.steps[i].Invert(p)
	}
	return p
}

// Apply maps every point forward. The result has the rank of pts.
func (s *Sequence) Apply(pts points.Set) points.Set {
	return pts.Map(s.ApplyVec)
}

// Invert maps every point backward. The result has the rank of pts.
func (s *Sequence) Invert(pts points.Set) points.Set {
	return pts.Map(s.InvertVec)
}

// ApplyProjectVec maps p forward and returns one coordinate.
func (s *Sequence) ApplyProjectVec(axis Axis, p r3.Vec) float64 {
	return axis.Of(s.ApplyVec(p))
}

// ApplyProject maps every point forward and keeps one coordinate. A single
// point yields a single value.
func (s *Sequence) ApplyProject(axis Axis, pts points.Set) points.Values {
	return pts.Project(func(p r3.Vec) float64 {
		return s.ApplyProjectVec(axis, p)
	})
}

// ApplyTable resolves column in t through the point adapter and maps the
// points forward. Adapter errors are returned unchanged.
func (s *Sequence) ApplyTable(column string, t points.Table) (points.Set, error) {
	pts, err := points.Resolve(column, t)
	if err != nil {
		return points.Set{}, err
	}
	return s.Apply(pts), nil
}

// ApplyTableProject is ApplyTable followed by a projection onto the axis
// named by projection.
func (s *Sequence) ApplyTableProject(projection, column string, t points.Table) (points.Values, error) {
	axis, err := ParseAxis(projection)
	if err != nil {
		return points.Values{}, err
	}
	pts, err := points.Resolve(column, t)
	if err != nil {
		return points.Values{}, err
	}
	return s.ApplyProject(axis, pts), nil
}

func (s *Sequence) String() string {
	var b strings.Builder
	b.WriteString("Transformation Sequence:")
	for _, st := range s.steps {
		b.WriteString("\n\t")
		b.WriteString(st.String())
	}
	return b.String()
}
