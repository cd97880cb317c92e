// Package datasets defines the coordinate conventions of the supported
// imaging datasets. Each dataset knows its pial reference point, native voxel
// resolution and orientation, and builds transform sequences and streamlines
// from any input resolution into oriented microns.
//
// Oriented microns put the pial surface at y = 0 with depth increasing along
// +y. Every factory returns a fresh value; nothing here is global state.
package datasets

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"standardtransform/pkg/config"
	"standardtransform/pkg/streamline"
	"standardtransform/pkg/transform"
)

// ErrUnknownDataset is returned when a name is not in the registry.
var ErrUnknownDataset = errors.New("unknown dataset")

// Nanometers is the resolution of coordinates already in nanometers.
var Nanometers = r3.Vec{X: 1, Y: 1, Z: 1}

// Dataset describes one imaging volume.
type Dataset struct {
	Name string

	// PiaPointNm is a point on the pial surface in nanometers.
	PiaPointNm r3.Vec

	// VoxelResolution is the native voxel size in nanometers.
	VoxelResolution r3.Vec

	// Orientation rotates nanometer coordinates so depth runs along +y.
	Orientation transform.RotationSpec

	// StreamlineUm holds reference streamline samples in oriented microns.
	// Empty means a straight vertical streamline.
	StreamlineUm []r3.Vec
}

// Minnie65 returns the MICrONS minnie65 dataset.
func Minnie65() *Dataset {
	return &Dataset{
		Name:            "minnie65",
		PiaPointNm:      r3.Vec{X: 183013 * 4, Y: 83535 * 4, Z: 21480 * 45},
		VoxelResolution: r3.Vec{X: 4, Y: 4, Z: 40},
		Orientation:     transform.Euler{Sequence: "z", Angles: []float64{5}, Degrees: true},
	}
}

// v1ddUp is the direction of the cortical column in v1dd nanometer space.
var v1ddUp = r3.Vec{X: -0.00497765, Y: 0.96349375, Z: 0.26768454}

// V1DD returns the V1 deep dive dataset.
func V1DD() *Dataset {
	return &Dataset{
		Name:            "v1dd",
		PiaPointNm:      r3.Vec{X: 101249 * 9, Y: 32249 * 9, Z: 9145 * 45},
		VoxelResolution: r3.Vec{X: 9, Y: 9, Z: 45},
		Orientation:     transform.AlignVectors(v1ddUp, r3.Vec{Y: 1}),
	}
}

// FromConfig builds a dataset from its configuration entry, loading the
// streamline file if one is named.
func FromConfig(cfg config.Dataset) (*Dataset, error) {
	pia, err := vec3(cfg.PiaPointNm)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: pia point: %w", cfg.Name, err)
	}
	res, err := vec3(cfg.VoxelResolution)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: voxel resolution: %w", cfg.Name, err)
	}

	var spec transform.RotationSpec
	o := cfg.Orientation
	if len(o.Up) > 0 {
		up, err := vec3(o.Up)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: up vector: %w", cfg.Name, err)
		}
		spec = transform.AlignVectors(up, r3.Vec{Y: 1})
	} else {
		spec = transform.Euler{Sequence: o.Euler, Angles: o.Angles, Degrees: o.Degrees}
	}

	d := &Dataset{
		Name:            cfg.Name,
		PiaPointNm:      pia,
		VoxelResolution: res,
		Orientation:     spec,
	}

	// Surface a bad orientation now rather than on first use
	if _, err := d.TransformNm(); err != nil {
		return nil, fmt.Errorf("dataset %q: %w", cfg.Name, err)
	}

	if cfg.Streamline.File == "" {
		return d, nil
	}
	pts, err := streamline.LoadPointsFile(cfg.Streamline.File)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", cfg.Name, err)
	}
	if cfg.Streamline.PreTransform {
		sres := Nanometers
		if len(cfg.Streamline.Resolution) > 0 {
			if sres, err = vec3(cfg.Streamline.Resolution); err != nil {
				return nil, fmt.Errorf("dataset %q: streamline resolution: %w", cfg.Name, err)
			}
		}
		tform, err := d.TransformRes(sres)
		if err != nil {
			return nil, fmt.Errorf("dataset %q: %w", cfg.Name, err)
		}
		for i, p := range pts {
			pts[i] = tform.ApplyVec(p)
		}
	}
	d.StreamlineUm = pts

	// Reject unusable samples at load time
	if _, err := d.StreamlineNm(); err != nil {
		return nil, fmt.Errorf("dataset %q: %w", cfg.Name, err)
	}
	return d, nil
}

func vec3(vals []float64) (r3.Vec, error) {
	if len(vals) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: need 3 values, got %d", transform.ErrInvalidParameter, len(vals))
	}
	return r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// TransformNm maps nanometer coordinates to oriented microns.
func (d *Dataset) TransformNm() (*transform.Sequence, error) {
	return d.TransformRes(Nanometers)
}

// TransformVx maps native voxel coordinates to oriented microns.
func (d *Dataset) TransformVx() (*transform.Sequence, error) {
	return d.TransformRes(d.VoxelResolution)
}

// TransformRes maps coordinates in voxels of size res (nanometers) to
// oriented microns: scale to nanometers, orient, move the pia to y = 0 and
// scale to microns.
func (d *Dataset) TransformRes(res r3.Vec) (*transform.Sequence, error) {
	if res.X == 0 || res.Y == 0 || res.Z == 0 {
		return nil, fmt.Errorf("%w: resolution %v has a zero component", transform.ErrInvalidParameter, res)
	}

	s := transform.NewSequence()
	if res != Nanometers {
		s.AddScale(transform.PerAxis(res.X, res.Y, res.Z))
	}
	if err := s.AddRotate(d.Orientation); err != nil {
		return nil, fmt.Errorf("orientation: %w", err)
	}

	pia := r3.Vec{X: d.PiaPointNm.X / res.X, Y: d.PiaPointNm.Y / res.Y, Z: d.PiaPointNm.Z / res.Z}
	s.AddTranslateVec(r3.Vec{Y: -s.ApplyProjectVec(transform.AxisY, pia)})
	s.AddScale(transform.Uniform(1.0 / 1000))
	return s, nil
}

// StreamlineNm is the dataset streamline with nanometer queries.
func (d *Dataset) StreamlineNm() (*streamline.Streamline, error) {
	return d.StreamlineRes(Nanometers)
}

// StreamlineVx is the dataset streamline with native voxel queries.
func (d *Dataset) StreamlineVx() (*streamline.Streamline, error) {
	return d.StreamlineRes(d.VoxelResolution)
}

// StreamlineRes is the dataset streamline with queries in voxels of size
// res. The curve itself is the same at every resolution.
func (d *Dataset) StreamlineRes(res r3.Vec) (*streamline.Streamline, error) {
	tform, err := d.TransformRes(res)
	if err != nil {
		return nil, err
	}
	if len(d.StreamlineUm) == 0 {
		return streamline.Straight(tform), nil
	}
	return streamline.New(d.StreamlineUm, tform, false)
}
