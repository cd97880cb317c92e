package points

import (
	"encoding/csv"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
)

// Table is the tabular source the adapter reads point columns from.
type Table interface {
	// HasColumn reports whether a column with this exact name exists.
	HasColumn(name string) bool

	// Column returns the cells of the named column in row order.
	Column(name string) ([]any, error)
}

// Frame is an in-memory, column oriented Table.
type Frame struct {
	names []string
	cols  map[string][]any
	rows  int
}

// NewFrame returns an empty frame.
func NewFrame() *Frame {
	return &Frame{cols: make(map[string][]any)}
}

// AddColumn adds or replaces a column. values may be a slice of scalars
// ([]float64, []int, []string), of vectors ([][]float64, [][3]float64,
// []r3.Vec) or of arbitrary cells ([]any). All columns must have the same
// number of rows.
func (f *Frame) AddColumn(name string, values any) error {
	var cells []any
	switch t := values.(type) {
	case []any:
		cells = t
	case []float64:
		cells = cellsOf(t)
	case []int:
		cells = cellsOf(t)
	case []string:
		cells = cellsOf(t)
	case [][]float64:
		cells = cellsOf(t)
	case [][3]float64:
		cells = cellsOf(t)
	case []r3.Vec:
		cells = cellsOf(t)
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrInvalidInput, values)
	}

	_, exists := f.cols[name]
	others := len(f.names)
	if exists {
		others--
	}
	if others > 0 && len(cells) != f.rows {
		return fmt.Errorf("%w: column %q has %d rows, frame has %d", ErrInvalidInput, name, len(cells), f.rows)
	}
	if !exists {
		f.names = append(f.names, name)
	}
	f.cols[name] = cells
	f.rows = len(cells)
	return nil
}

func cellsOf[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	c := make([]string, len(f.names))
	copy(c, f.names)
	return c
}

// HasColumn implements Table.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column implements Table.
func (f *Frame) Column(name string) ([]any, error) {
	cells, ok := f.cols[name]
	if !ok {
		return nil, &ColumnError{Column: name, Err: ErrColumnNotFound}
	}
	return cells, nil
}

// ReadCSV reads a frame whose first record is the header. Cells are kept as
// strings and coerced when a column is resolved.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading csv header: %w", err)
	}

	cols := make([][]string, len(header))
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv record: %w", err)
		}
		for i := range header {
			cols[i] = append(cols[i], rec[i])
		}
	}

	f := NewFrame()
	for i, name := range header {
		if cols[i] == nil {
			cols[i] = []string{}
		}
		if err := f.AddColumn(name, cols[i]); err != nil {
			return nil, err
		}
	}
	return f, nil
}
