package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"standardtransform/pkg/points"
)

// outputOptions controls how results are written.
type outputOptions struct {
	Format    string
	Precision int
}

// column is one named output column.
type column struct {
	name   string
	values []float64
}

func pointColumns(s points.Set) []column {
	return []column{
		{"x", s.Component(0)},
		{"y", s.Component(1)},
		{"z", s.Component(2)},
	}
}

// writeVecs writes points as x, y, z columns in CSV, or as a JSON array of
// 3-element arrays.
func writeVecs(w io.Writer, s points.Set, opts outputOptions) error {
	if opts.Format == "json" {
		return writeJSON(w, s.Rows())
	}
	return writeColumns(w, pointColumns(s), opts)
}

// writeColumns writes named columns in CSV, or as a JSON object of arrays.
func writeColumns(w io.Writer, cols []column, opts outputOptions) error {
	switch opts.Format {
	case "json":
		obj := make(map[string][]float64, len(cols))
		for _, c := range cols {
			obj[c.name] = c.values
		}
		return writeJSON(w, obj)
	case "csv", "":
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	rows := 0
	if len(cols) > 0 {
		rows = len(cols[0].values)
	}
	record := make([]string, len(cols))
	for r := 0; r < rows; r++ {
		for i, c := range cols {
			record[i] = formatFloat(c.values[r], opts.Precision)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// formatFloat writes v with prec decimals, or the shortest exact form when
// prec is negative.
func formatFloat(v float64, prec int) string {
	if prec < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
