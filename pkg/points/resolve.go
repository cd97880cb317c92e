package points

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"gonum.org/v1/gonum/spatial/r3"
)

// SplitKind names a convention for storing a position in three scalar
// columns.
type SplitKind int

const (
	// SplitAuto picks whichever convention the table uses.
	SplitAuto SplitKind = iota
	// SplitFinal stores components as <col>_x, <col>_y, <col>_z.
	SplitFinal
	// SplitInfix stores components of <prefix>_<suffix> as
	// <prefix>_x_<suffix>, <prefix>_y_<suffix>, <prefix>_z_<suffix>.
	SplitInfix
)

var splitSuffixes = [3]string{"x", "y", "z"}

// SplitColumnsOfKind returns the three column names column expands to
// under kind. SplitInfix needs an underscore in column; without one it
// yields no names.
func SplitColumnsOfKind(column string, kind SplitKind) ([]string, error) {
	switch kind {
	case SplitFinal:
		out := make([]string, 3)
		for i, suf := range splitSuffixes {
			out[i] = column + "_" + suf
		}
		return out, nil
	case SplitInfix:
		cut := strings.LastIndex(column, "_")
		if cut < 0 {
			return nil, nil
		}
		prefix, suffix := column[:cut], column[cut+1:]
		out := make([]string, 3)
		for i, suf := range splitSuffixes {
			out[i] = prefix + "_" + suf + "_" + suffix
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: split kind %d has no fixed column names", ErrInvalidInput, kind)
	}
}

func hasAll(t Table, names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		if !t.HasColumn(n) {
			return false
		}
	}
	return true
}

// SplitColumns resolves column to its three split component columns in t.
// It fails with ErrAmbiguousColumn when both conventions are present and
// with ErrColumnNotFound when neither is.
func SplitColumns(column string, t Table) ([]string, error) {
	final, _ := SplitColumnsOfKind(column, SplitFinal)
	infix, _ := SplitColumnsOfKind(column, SplitInfix)
	hasFinal, hasInfix := hasAll(t, final), hasAll(t, infix)

	switch {
	case hasFinal && hasInfix:
		return nil, &ColumnError{Column: column, Err: fmt.Errorf("%w: both %v and %v are present", ErrAmbiguousColumn, final, infix)}
	case hasFinal:
		return final, nil
	case hasInfix:
		return infix, nil
	default:
		return nil, &ColumnError{Column: column, Err: ErrColumnNotFound}
	}
}

// IsSplit reports whether column is stored as split position columns in t.
func IsSplit(column string, t Table) bool {
	if t.HasColumn(column) {
		return false
	}
	_, err := SplitColumns(column, t)
	return err == nil
}

// Resolve reads column from t as a batch of points. A column holding
// vector-valued cells is used directly; otherwise the split conventions are
// tried.
func Resolve(column string, t Table) (Set, error) {
	if t.HasColumn(column) {
		cells, err := t.Column(column)
		if err != nil {
			return Set{}, err
		}
		vecs := make([]r3.Vec, len(cells))
		for i, cell := range cells {
			p, err := ParseVec(cell)
			if err != nil {
				return Set{}, &ColumnError{Column: column, Err: fmt.Errorf("row %d: %w", i, err)}
			}
			vecs[i] = p
		}
		return Set{vecs: vecs}, nil
	}
	return Assemble(column, t, SplitAuto)
}

// Assemble stacks the three split component columns of column into a batch.
func Assemble(column string, t Table, kind SplitKind) (Set, error) {
	var names []string
	var err error
	if kind == SplitAuto {
		names, err = SplitColumns(column, t)
	} else {
		names, err = SplitColumnsOfKind(column, kind)
		if err == nil && !hasAll(t, names) {
			err = &ColumnError{Column: column, Err: ErrColumnNotFound}
		}
	}
	if err != nil {
		return Set{}, err
	}

	comps := make([][]float64, 3)
	for i, name := range names {
		cells, err := t.Column(name)
		if err != nil {
			return Set{}, err
		}
		vals := make([]float64, len(cells))
		for j, cell := range cells {
			v, err := cast.ToFloat64E(cell)
			if err != nil {
				return Set{}, &ColumnError{Column: name, Err: fmt.Errorf("%w: row %d: %v", ErrInvalidInput, j, err)}
			}
			vals[j] = v
		}
		comps[i] = vals
	}
	if len(comps[0]) != len(comps[1]) || len(comps[0]) != len(comps[2]) {
		return Set{}, &ColumnError{Column: column, Err: fmt.Errorf("%w: split columns differ in length", ErrInvalidInput)}
	}

	vecs := make([]r3.Vec, len(comps[0]))
	for i := range vecs {
		vecs[i] = r3.Vec{X: comps[0][i], Y: comps[1][i], Z: comps[2][i]}
	}
	return Set{vecs: vecs}, nil
}
