package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"standardtransform/pkg/datasets"
	"standardtransform/pkg/points"
)

// parseVec parses a point written as "x,y,z", "x y z" or "[x, y, z]".
func parseVec(s string) (r3.Vec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return r3.Vec{}, fmt.Errorf("%w: empty point", points.ErrInvalidInput)
	}
	if !strings.HasPrefix(s, "[") && strings.Contains(s, ",") {
		s = "[" + s + "]"
	}
	return points.ParseVec(s)
}

// parseResolution maps "vx", "nm" or an explicit "x,y,z" voxel size to a
// resolution in nanometers.
func parseResolution(s string, d *datasets.Dataset) (r3.Vec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "vx", "voxel", "voxels":
		return d.VoxelResolution, nil
	case "nm", "nanometers":
		return datasets.Nanometers, nil
	}
	res, err := parseVec(s)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("invalid resolution %q: %w", s, err)
	}
	return res, nil
}

// readTable reads a CSV point table from path, or from stdin when path is
// "-" or empty.
func readTable(path string, stdin io.Reader) (*points.Frame, error) {
	if path == "" || path == "-" {
		return points.ReadCSV(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return points.ReadCSV(f)
}
