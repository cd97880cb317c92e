package streamline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"standardtransform/pkg/points"
)

// LoadPoints decodes an ordered list of 3-D points stored as a JSON array of
// three element arrays.
func LoadPoints(r io.Reader) ([]r3.Vec, error) {
	var rows [][]float64
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("error decoding streamline points: %w", err)
	}
	set, err := points.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("error decoding streamline points: %w", err)
	}
	return set.Vecs(), nil
}

// LoadPointsFile reads LoadPoints input from a file.
func LoadPointsFile(path string) ([]r3.Vec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening streamline file: %w", err)
	}
	defer f.Close()
	return LoadPoints(f)
}

// WritePoints encodes pts in the format read by LoadPoints.
func WritePoints(w io.Writer, pts []r3.Vec) error {
	rows := points.Batch(pts).Rows()
	enc := json.NewEncoder(w)
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("error encoding streamline points: %w", err)
	}
	return nil
}
