package datasets

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"standardtransform/pkg/config"
	"standardtransform/pkg/points"
	"standardtransform/pkg/streamline"
	"standardtransform/pkg/transform"
)

func mulVec(a, b r3.Vec) r3.Vec { return r3.Vec{X: a.X * b.X, Y: a.Y * b.Y, Z: a.Z * b.Z} }
func divVec(a, b r3.Vec) r3.Vec { return r3.Vec{X: a.X / b.X, Y: a.Y / b.Y, Z: a.Z / b.Z} }

func vecClose(a, b r3.Vec, abs, rel float64) bool {
	return scalar.EqualWithinAbsOrRel(a.X, b.X, abs, rel) &&
		scalar.EqualWithinAbsOrRel(a.Y, b.Y, abs, rel) &&
		scalar.EqualWithinAbsOrRel(a.Z, b.Z, abs, rel)
}

// seqOf fails t when a transform cannot be built.
func seqOf(t *testing.T) func(*transform.Sequence, error) *transform.Sequence {
	return func(s *transform.Sequence, err error) *transform.Sequence {
		t.Helper()
		if err != nil {
			t.Fatalf("Failed to build transform: %v", err)
		}
		return s
	}
}

// TestVoxelNanometerEquivalence verifies that the voxel transform on voxel
// points equals the nanometer transform on the same points in nanometers
func TestVoxelNanometerEquivalence(t *testing.T) {
	p := r3.Vec{X: 59769, Y: 60738, Z: 9145}

	for _, d := range []*Dataset{Minnie65(), V1DD()} {
		t.Run(d.Name, func(t *testing.T) {
			vx := seqOf(t)(d.TransformVx())
			nm := seqOf(t)(d.TransformNm())

			got := vx.ApplyVec(p)
			want := nm.ApplyVec(mulVec(p, d.VoxelResolution))
			if got != want {
				t.Errorf("Expected %v, got %v", want, got)
			}

			res := r3.Vec{X: 1000, Y: 1000, Z: 1000}
			um := seqOf(t)(d.TransformRes(res))
			got = um.ApplyVec(divVec(mulVec(p, d.VoxelResolution), res))
			if !vecClose(got, want, 1e-9, 1e-12) {
				t.Errorf("Expected %v at micron resolution, got %v", want, got)
			}
		})
	}
}

// TestPiaAtZeroDepth verifies that the pial point lands on y = 0
func TestPiaAtZeroDepth(t *testing.T) {
	for _, d := range []*Dataset{Minnie65(), V1DD()} {
		nm := seqOf(t)(d.TransformNm())
		if y := nm.ApplyProjectVec(transform.AxisY, d.PiaPointNm); y != 0 {
			t.Errorf("%s: expected pia depth 0, got %v", d.Name, y)
		}
	}
}

// TestMinnieSteps verifies the structure of the minnie65 voxel sequence
func TestMinnieSteps(t *testing.T) {
	vx := seqOf(t)(Minnie65().TransformVx())
	var kinds []transform.Kind
	for _, st := range vx.Steps() {
		kinds = append(kinds, st.Kind())
	}
	want := []transform.Kind{transform.KindScale, transform.KindRotate, transform.KindTranslate, transform.KindScale}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("Expected steps %v, got %v", want, kinds)
	}

	nm := seqOf(t)(Minnie65().TransformNm())
	if nm.Len() != 3 {
		t.Errorf("Expected 3 nanometer steps, got %d", nm.Len())
	}
}

// TestV1DDUpVector verifies that the v1dd column direction becomes +y
func TestV1DDUpVector(t *testing.T) {
	nm := seqOf(t)(V1DD().TransformNm())
	origin := nm.ApplyVec(r3.Vec{})
	up := r3.Unit(r3.Sub(nm.ApplyVec(r3.Scale(1000, v1ddUp)), origin))
	if !vecClose(up, r3.Vec{Y: 1}, 1e-6, 0) {
		t.Errorf("Expected up vector along +y, got %v", up)
	}
}

// TestColumnFormEquivalence verifies that every column storage convention
// transforms to the same points
func TestColumnFormEquivalence(t *testing.T) {
	vecs := []r3.Vec{{X: 59769, Y: 60738, Z: 9145}, {X: 180000, Y: 90000, Z: 20000}}
	vx := seqOf(t)(Minnie65().TransformVx())

	vecFrame := points.NewFrame()
	if err := vecFrame.AddColumn("pt_position", vecs); err != nil {
		t.Fatal(err)
	}

	split := func(names [3]string) *points.Frame {
		f := points.NewFrame()
		for i, n := range names {
			if err := f.AddColumn(n, points.Batch(vecs).Component(i)); err != nil {
				t.Fatal(err)
			}
		}
		return f
	}

	want := vx.Apply(points.Batch(vecs))
	cases := []struct {
		column string
		table  points.Table
	}{
		{"pt_position", vecFrame},
		{"pt_position", split([3]string{"pt_position_x", "pt_position_y", "pt_position_z"})},
		{"pt_position_soma", split([3]string{"pt_position_x_soma", "pt_position_y_soma", "pt_position_z_soma"})},
	}
	for _, c := range cases {
		got, err := vx.ApplyTable(c.column, c.table)
		if err != nil {
			t.Fatalf("Column %s: %v", c.column, err)
		}
		if !reflect.DeepEqual(got.Rows(), want.Rows()) {
			t.Errorf("Column %s: expected %v, got %v", c.column, want.Rows(), got.Rows())
		}
	}

	for i, p := range vecs {
		if got := vx.ApplyVec(p); got != want.At(i) {
			t.Errorf("Single point %d: expected %v, got %v", i, want.At(i), got)
		}
	}
}

var (
	arbRes  = r3.Vec{X: 9.7, Y: 9.7, Z: 45}
	rootNm  = r3.Vec{X: 817335, Y: 611523, Z: 336240}
	ptsArb  = []r3.Vec{{X: 93970, Y: 80981, Z: 6503}, {X: 121308, Y: 87759, Z: 7414}, {X: 85876, Y: 86346, Z: 8505}, {X: 85907, Y: 80487, Z: 9338}, {X: 79356, Y: 82186, Z: 8454}}
	curveUm = []r3.Vec{{X: 0, Y: -50, Z: 0}, {X: 10, Y: 300, Z: 5}, {X: 30, Y: 600, Z: -10}, {X: 60, Y: 900, Z: 0}}
)

func scaled(vs []r3.Vec, fn func(r3.Vec) r3.Vec) points.Set {
	out := make([]r3.Vec, len(vs))
	for i, v := range vs {
		out[i] = fn(v)
	}
	return points.Batch(out)
}

func v1ddCurved() *Dataset {
	d := V1DD()
	d.StreamlineUm = curveUm
	return d
}

// lineOf fails t when a streamline cannot be built.
func lineOf(t *testing.T) func(*streamline.Streamline, error) *streamline.Streamline {
	return func(s *streamline.Streamline, err error) *streamline.Streamline {
		t.Helper()
		if err != nil {
			t.Fatalf("Failed to build streamline: %v", err)
		}
		return s
	}
}

// TestStreamlineResolutionEquivalence verifies that radial points agree
// whichever resolution the queries arrive in
func TestStreamlineResolutionEquivalence(t *testing.T) {
	for _, d := range []*Dataset{V1DD(), v1ddCurved()} {
		vxRes := d.VoxelResolution
		arb := points.Batch(ptsArb)
		vx := scaled(ptsArb, func(v r3.Vec) r3.Vec { return divVec(mulVec(v, arbRes), vxRes) })
		nm := scaled(ptsArb, func(v r3.Vec) r3.Vec { return mulVec(v, arbRes) })

		opts := streamline.DefaultRadialOptions()
		slArb := lineOf(t)(d.StreamlineRes(arbRes))
		slVx := lineOf(t)(d.StreamlineVx())
		slNm := lineOf(t)(d.StreamlineNm())

		gotArb, err := slArb.RadialPoints(points.Single(divVec(rootNm, arbRes)), arb, opts)
		if err != nil {
			t.Fatal(err)
		}
		gotVx, err := slVx.RadialPoints(points.Single(divVec(rootNm, vxRes)), vx, opts)
		if err != nil {
			t.Fatal(err)
		}
		gotNm, err := slNm.RadialPoints(points.Single(rootNm), nm, opts)
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; i < gotNm.Len(); i++ {
			if !vecClose(gotNm.At(i), gotVx.At(i), 1e-6, 1e-9) {
				t.Errorf("%d streamline samples, point %d: nm %v and vx %v differ", len(d.StreamlineUm), i, gotNm.At(i), gotVx.At(i))
			}
			if !vecClose(gotNm.At(i), gotArb.At(i), 1e-6, 1e-9) {
				t.Errorf("%d streamline samples, point %d: nm %v and arbitrary %v differ", len(d.StreamlineUm), i, gotNm.At(i), gotArb.At(i))
			}
		}
	}
}

// TestStreamlinePointsTformEquivalence verifies that threaded streamline
// points map back to the same nanometer positions at any resolution
func TestStreamlinePointsTformEquivalence(t *testing.T) {
	d := v1ddCurved()
	slNm := lineOf(t)(d.StreamlineNm())
	slArb := lineOf(t)(d.StreamlineRes(arbRes))

	a := slNm.PointsTform(rootNm)
	b := slArb.PointsTform(divVec(rootNm, arbRes))
	if len(a) != len(curveUm) || len(b) != len(curveUm) {
		t.Fatalf("Expected %d points, got %d and %d", len(curveUm), len(a), len(b))
	}
	for i := range a {
		if got := mulVec(b[i], arbRes); !vecClose(a[i], got, 1e-6, 1e-9) {
			t.Errorf("Point %d: expected %v, got %v", i, a[i], got)
		}
	}
}

// TestFromConfig verifies that the default config matches the built-in
// datasets
func TestFromConfig(t *testing.T) {
	reg, err := NewRegistry(config.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to build registry: %v", err)
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"minnie65", "v1dd"}) {
		t.Errorf("Expected [minnie65 v1dd], got %v", got)
	}

	p := r3.Vec{X: 59769, Y: 60738, Z: 9145}
	for _, builtin := range []*Dataset{Minnie65(), V1DD()} {
		d, err := reg.Get(builtin.Name)
		if err != nil {
			t.Fatal(err)
		}
		got := seqOf(t)(d.TransformVx()).ApplyVec(p)
		want := seqOf(t)(builtin.TransformVx()).ApplyVec(p)
		if !vecClose(got, want, 1e-9, 1e-12) {
			t.Errorf("%s: expected %v, got %v", builtin.Name, want, got)
		}
	}
}

// TestFromConfigStreamline verifies that streamline files load in either
// coordinate space
func TestFromConfigStreamline(t *testing.T) {
	nmSeq := seqOf(t)(Minnie65().TransformNm())
	raw := make([]r3.Vec, len(curveUm))
	for i, p := range curveUm {
		raw[i] = nmSeq.InvertVec(p)
	}

	dir := t.TempDir()
	write := func(name string, pts []r3.Vec) string {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		if err := streamline.WritePoints(f, pts); err != nil {
			t.Fatal(err)
		}
		return path
	}

	base := config.DefaultConfig().Datasets[0]

	post := base
	post.Streamline = config.Streamline{File: write("post.json", curveUm)}
	pre := base
	pre.Streamline = config.Streamline{File: write("pre.json", raw), PreTransform: true}

	for _, dc := range []config.Dataset{post, pre} {
		d, err := FromConfig(dc)
		if err != nil {
			t.Fatalf("Failed to load %s: %v", dc.Streamline.File, err)
		}
		if len(d.StreamlineUm) != len(curveUm) {
			t.Fatalf("Expected %d samples, got %d", len(curveUm), len(d.StreamlineUm))
		}
		for i, p := range d.StreamlineUm {
			if !vecClose(p, curveUm[i], 1e-9, 1e-12) {
				t.Errorf("%s sample %d: expected %v, got %v", dc.Streamline.File, i, curveUm[i], p)
			}
		}
	}

	bad := base
	bad.Streamline = config.Streamline{File: write("short.json", curveUm[:1])}
	if _, err := FromConfig(bad); !errors.Is(err, points.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for a one point streamline, got %v", err)
	}
}

// TestRegistryUnknown verifies the unknown dataset error
func TestRegistryUnknown(t *testing.T) {
	_, err := DefaultRegistry().Get("h01")
	if !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("Expected ErrUnknownDataset, got %v", err)
	}
}

// TestInvalidResolution verifies that zero resolution components are rejected
func TestInvalidResolution(t *testing.T) {
	_, err := Minnie65().TransformRes(r3.Vec{X: 4, Y: 0, Z: 40})
	if !errors.Is(err, transform.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}
