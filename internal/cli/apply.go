package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"standardtransform/pkg/points"
	"standardtransform/pkg/transform"
)

const defaultColumn = "pt_position"

// applyCommand creates the apply command.
func (c *CLI) applyCommand() *cobra.Command {
	var (
		input   string
		col     string
		project string
		invert  bool
		asInt   bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Transform a point column into oriented microns",
		Long: `Reads a CSV table and transforms the point column named by --column.

The column may hold vectors ("[x, y, z]") or be split into <col>_x, <col>_y,
<col>_z or <prefix>_x_<suffix>, <prefix>_y_<suffix>, <prefix>_z_<suffix>.`,
		Example: `  standardtransform apply -i synapses.csv --column ctr_pt_position
  standardtransform apply -i cells.csv --project y --resolution nm
  standardtransform apply -i oriented.csv --invert --as-int`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := startStage(logger, "transform")

			if invert && project != "" {
				return fmt.Errorf("--invert and --project cannot be combined")
			}

			tform, err := c.transformSeq(ctx)
			if err != nil {
				return err
			}
			table, err := readTable(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			if project != "" {
				axis, err := transform.ParseAxis(project)
				if err != nil {
					return err
				}
				vals, err := tform.ApplyTableProject(project, col, table)
				if err != nil {
					return err
				}
				if asInt {
					vals = vals.Truncate()
				}
				prog.done(vals.Len())
				return writeColumns(cmd.OutOrStdout(), []column{{axis.String(), vals.Slice()}}, c.intOutput(asInt))
			}

			var out points.Set
			if invert {
				pts, err := points.Resolve(col, table)
				if err != nil {
					return err
				}
				out = tform.Invert(pts)
			} else {
				out, err = tform.ApplyTable(col, table)
				if err != nil {
					return err
				}
			}
			if asInt {
				out = out.Truncate()
			}
			prog.done(out.Len())
			return writeVecs(cmd.OutOrStdout(), out, c.intOutput(asInt))
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "input CSV file (- for stdin)")
	cmd.Flags().StringVar(&col, "column", defaultColumn, "point column name")
	cmd.Flags().StringVarP(&project, "project", "p", "", "write only one axis (x, y or z)")
	cmd.Flags().BoolVar(&invert, "invert", false, "map oriented microns back to dataset coordinates")
	cmd.Flags().BoolVar(&asInt, "as-int", false, "truncate results toward zero")

	return cmd
}

// intOutput drops decimals when values were truncated.
func (c *CLI) intOutput(asInt bool) outputOptions {
	opts := c.output()
	if asInt {
		opts.Precision = 0
	}
	return opts
}
