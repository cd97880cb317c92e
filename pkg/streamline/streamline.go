// Package streamline models a curved depth axis, such as the path from the
// pial surface to white matter, and measures points against it.
//
// A Streamline stores its sample points in post-transform space and
// describes the curve with two depth indexed interpolants, one for the
// lateral (x) and one for the normal (z) coordinate. Queries re-thread the
// curve through an anchor point without modifying it.
package streamline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"standardtransform/pkg/interpolation"
	"standardtransform/pkg/points"
	"standardtransform/pkg/transform"
)

// DefaultDelta is the default lattice spacing used by DepthAlong.
const DefaultDelta = 0.1

// maxLattice caps the number of lattice samples DepthAlong allocates.
const maxLattice = 1 << 24

// Streamline is a reference curve in post-transform space. It is read-only
// after construction and safe for concurrent use.
type Streamline struct {
	// tform moves points between pre- and post-transform space
	tform *transform.Sequence

	// points holds the samples in post-transform space, in input order
	points []r3.Vec

	// lateral and normal map depth to x and z
	lateral *interpolation.Linear
	normal  *interpolation.Linear
}

// New builds a streamline from sample points. A nil tform is the identity.
// When preTransform is true the samples are in pre-transform coordinates and
// are moved through tform first.
//
// The samples need at least two distinct depths. They do not need to be
// sorted, but no two may share a depth.
func New(pts []r3.Vec, tform *transform.Sequence, preTransform bool) (*Streamline, error) {
	if tform == nil {
		tform = transform.Identity()
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: streamline needs at least 2 points, got %d", points.ErrInvalidInput, len(pts))
	}

	stored := make([]r3.Vec, len(pts))
	for i, p := range pts {
		if preTransform {
			p = tform.ApplyVec(p)
		}
		stored[i] = p
	}

	set := points.Batch(stored)
	xs, ys, zs := set.Component(0), set.Component(1), set.Component(2)

	lateral, err := interpolation.NewLinear(ys, xs)
	if err != nil {
		return nil, fmt.Errorf("%w: lateral interpolant: %w", points.ErrInvalidInput, err)
	}
	normal, err := interpolation.NewLinear(ys, zs)
	if err != nil {
		return nil, fmt.Errorf("%w: normal interpolant: %w", points.ErrInvalidInput, err)
	}

	return &Streamline{
		tform:   tform,
		points:  stored,
		lateral: lateral,
		normal:  normal,
	}, nil
}

// Straight returns the streamline running straight along the depth axis in
// post-transform space.
func Straight(tform *transform.Sequence) *Streamline {
	s, err := New([]r3.Vec{{}, {Y: 1}}, tform, false)
	if err != nil {
		panic(err)
	}
	return s
}

// Points returns a copy of the samples in post-transform space.
func (s *Streamline) Points() []r3.Vec {
	c := make([]r3.Vec, len(s.points))
	copy(c, s.points)
	return c
}

// Transform returns the sequence relating pre- and post-transform space.
func (s *Streamline) Transform() *transform.Sequence { return s.tform }

// At returns the lateral and normal coordinates of the curve threaded
// through anchor, at the given depth.
func (s *Streamline) At(anchor r3.Vec, depth float64) (x, z float64) {
	x = anchor.X + (s.lateral.Predict(depth) - s.lateral.Predict(anchor.Y))
	z = anchor.Z + (s.normal.Predict(depth) - s.normal.Predict(anchor.Y))
	return x, z
}

// StreamlineAt evaluates the curve threaded through anchor at every depth.
func (s *Streamline) StreamlineAt(anchor r3.Vec, depths []float64) (xs, zs []float64) {
	x0, z0 := s.lateral.Predict(anchor.Y), s.normal.Predict(anchor.Y)
	xs = make([]float64, len(depths))
	zs = make([]float64, len(depths))
	for i, d := range depths {
		xs[i] = anchor.X + (s.lateral.Predict(d) - x0)
		zs[i] = anchor.Z + (s.normal.Predict(d) - z0)
	}
	return xs, zs
}

// PointsAt is StreamlineAt returned as 3-D points.
func (s *Streamline) PointsAt(anchor r3.Vec, depths []float64) []r3.Vec {
	xs, zs := s.StreamlineAt(anchor, depths)
	out := make([]r3.Vec, len(depths))
	for i, d := range depths {
		out[i] = r3.Vec{X: xs[i], Y: d, Z: zs[i]}
	}
	return out
}

// PointsTform threads the stored curve through anchorRaw, a pre-transform
// point, and returns one pre-transform point per stored sample.
func (s *Streamline) PointsTform(anchorRaw r3.Vec) []r3.Vec {
	anchor := s.tform.ApplyVec(anchorRaw)
	depths := points.Batch(s.points).Component(1)
	out := s.PointsAt(anchor, depths)
	for i, p := range out {
		out[i] = s.tform.InvertVec(p)
	}
	return out
}

// prepare checks the anchor and moves it and pts into post-transform space
// when transformPoints is set.
func (s *Streamline) prepare(anchor, pts points.Set, transformPoints bool) (r3.Vec, points.Set, error) {
	if !anchor.IsSingle() {
		return r3.Vec{}, points.Set{}, fmt.Errorf("%w: anchor must be a single point, got a batch of %d", points.ErrInvalidInput, anchor.Len())
	}
	a := anchor.Vec()
	q := pts
	if transformPoints {
		a = s.tform.ApplyVec(a)
		q = s.tform.Apply(pts)
	}
	return a, q, nil
}

func (s *Streamline) queryPoints(pts points.Set, transformPoints bool) points.Set {
	if transformPoints {
		return s.tform.Apply(pts)
	}
	return pts
}

// radial measures post-transform points q against the curve through a.
func (s *Streamline) radial(a r3.Vec, q points.Set) (r, theta []float64) {
	r = make([]float64, q.Len())
	theta = make([]float64, q.Len())
	for i := 0; i < q.Len(); i++ {
		p := q.At(i)
		x, z := s.At(a, p.Y)
		r[i] = math.Hypot(x-p.X, z-p.Z)
		theta[i] = math.Atan2(z-p.Z, x-p.X) + math.Pi
	}
	return r, theta
}

// RadialDistance returns, for every point, its distance in the x-z plane
// from the curve threaded through anchor, measured at the point's depth.
// anchor must be a single point. When transformPoints is true both inputs
// are in pre-transform space. The result has the rank of pts.
func (s *Streamline) RadialDistance(anchor, pts points.Set, transformPoints bool) (points.Values, error) {
	dist, _, err := s.RadialDistanceAngle(anchor, pts, transformPoints)
	return dist, err
}

// RadialDistanceAngle is RadialDistance together with the direction of each
// point as seen from the curve. Angles are atan2 of the curve-minus-point
// offset shifted by π, so they lie in (0, 2π] and 0 points along +x.
func (s *Streamline) RadialDistanceAngle(anchor, pts points.Set, transformPoints bool) (dist, angle points.Values, err error) {
	a, q, err := s.prepare(anchor, pts, transformPoints)
	if err != nil {
		return points.Values{}, points.Values{}, err
	}
	r, theta := s.radial(a, q)
	return q.WithValues(r), q.WithValues(theta), nil
}

// RadialOptions controls RadialPoints.
type RadialOptions struct {
	// TransformPoints marks anchor and points as pre-transform coordinates.
	TransformPoints bool

	// DepthAlongStreamline replaces raw depth with DepthAlong.
	DepthAlongStreamline bool

	// DepthFrom and Delta are passed to DepthAlong.
	DepthFrom float64
	Delta     float64
}

// DefaultRadialOptions transforms points, keeps raw depth and uses the
// default DepthAlong settings.
func DefaultRadialOptions() RadialOptions {
	return RadialOptions{TransformPoints: true, Delta: DefaultDelta}
}

// RadialPoints re-expresses every point in a straightened frame through
// anchor: its radial distance and angle relative to the curve are kept and
// the point is placed at that offset from anchor in the x-z plane. Depth is
// the raw post-transform depth or, with DepthAlongStreamline, the arc length
// along the curve. The result is in post-transform space with the rank of
// pts.
func (s *Streamline) RadialPoints(anchor, pts points.Set, opts RadialOptions) (points.Set, error) {
	a, q, err := s.prepare(anchor, pts, opts.TransformPoints)
	if err != nil {
		return points.Set{}, err
	}
	r, theta := s.radial(a, q)

	depths := q.Component(1)
	if opts.DepthAlongStreamline {
		along, err := s.DepthAlong(q, DepthOptions{DepthFrom: opts.DepthFrom, Delta: opts.Delta})
		if err != nil {
			return points.Set{}, err
		}
		depths = along.Slice()
	}

	out := make([]r3.Vec, q.Len())
	for i := range out {
		sin, cos := math.Sincos(theta[i])
		out[i] = r3.Vec{
			X: a.X + r[i]*cos,
			Y: depths[i],
			Z: a.Z + r[i]*sin,
		}
	}
	return q.WithVecs(out), nil
}

// DepthOptions controls DepthAlong.
type DepthOptions struct {
	// DepthFrom is the depth that reads as zero.
	DepthFrom float64

	// Delta is the largest spacing between curve samples used to integrate
	// arc length. It must be positive.
	Delta float64

	// TransformPoints marks the points as pre-transform coordinates.
	TransformPoints bool
}

// DefaultDepthOptions measures from depth 0 with DefaultDelta spacing on
// pre-transform points.
func DefaultDepthOptions() DepthOptions {
	return DepthOptions{Delta: DefaultDelta, TransformPoints: true}
}

// DepthAlong returns the signed path length along the curve from the depth
// DepthFrom to each point's depth.
//
// The curve is threaded through the mean x-z position of the points at
// DepthFrom and sampled at every query depth, at DepthFrom, and on a
// regular lattice no coarser than Delta spanning all of them. Arc length is
// accumulated between consecutive samples in depth order, so the error is
// O(Delta). Depths outside the stored samples use linear extrapolation.
func (s *Streamline) DepthAlong(pts points.Set, opts DepthOptions) (points.Values, error) {
	if !(opts.Delta > 0) || math.IsInf(opts.Delta, 0) {
		return points.Values{}, fmt.Errorf("%w: delta must be positive and finite, got %g", transform.ErrInvalidParameter, opts.Delta)
	}
	q := s.queryPoints(pts, opts.TransformPoints)
	n := q.Len()
	if n == 0 {
		return q.WithValues(nil), nil
	}

	ys := q.Component(1)
	anchor := r3.Vec{
		X: stat.Mean(q.Component(0), nil),
		Y: opts.DepthFrom,
		Z: stat.Mean(q.Component(2), nil),
	}

	if floats.HasNaN(ys) || math.IsNaN(opts.DepthFrom) {
		return points.Values{}, fmt.Errorf("%w: depths must be finite", points.ErrInvalidInput)
	}
	lo := math.Min(floats.Min(ys), opts.DepthFrom)
	hi := math.Max(floats.Max(ys), opts.DepthFrom)
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return points.Values{}, fmt.Errorf("%w: depths must be finite", points.ErrInvalidInput)
	}
	steps := math.Ceil((hi - lo) / opts.Delta)
	if !(steps < maxLattice) {
		return points.Values{}, fmt.Errorf("%w: delta %g over depth range %g needs more than %d samples",
			transform.ErrInvalidParameter, opts.Delta, hi-lo, maxLattice)
	}
	lattice := make([]float64, int(steps)+1)
	if len(lattice) < 2 {
		lattice[0] = lo
	} else {
		floats.Span(lattice, lo, hi)
	}

	depths := make([]float64, 0, n+1+len(lattice))
	depths = append(depths, ys...)
	depths = append(depths, opts.DepthFrom)
	depths = append(depths, lattice...)

	inds := make([]int, len(depths))
	floats.Argsort(depths, inds)

	samples := s.PointsAt(anchor, depths)
	arc := make([]float64, len(samples))
	for i := 1; i < len(samples); i++ {
		arc[i] = r3.Norm(r3.Sub(samples[i], samples[i-1]))
	}
	cum := floats.CumSum(arc, arc)

	rank := make([]int, len(inds))
	for sorted, orig := range inds {
		rank[orig] = sorted
	}
	ref := cum[rank[n]]

	out := make([]float64, n)
	for i := range out {
		out[i] = cum[rank[i]] - ref
	}
	return q.WithValues(out), nil
}
