package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"standardtransform/pkg/points"
	"standardtransform/pkg/streamline"
)

// queryFlags are shared by the commands that measure points against the
// streamline.
type queryFlags struct {
	input string
	col   string
	raw   bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.input, "input", "i", "-", "input CSV file (- for stdin)")
	cmd.Flags().StringVar(&q.col, "column", defaultColumn, "point column name")
	cmd.Flags().BoolVar(&q.raw, "raw", false, "inputs are already in oriented microns")
}

func (c *CLI) queryPoints(cmd *cobra.Command, q *queryFlags) (points.Set, error) {
	table, err := readTable(q.input, cmd.InOrStdin())
	if err != nil {
		return points.Set{}, err
	}
	return points.Resolve(q.col, table)
}

// radialCommand creates the radial command.
func (c *CLI) radialCommand() *cobra.Command {
	var (
		q      queryFlags
		anchor string
		angle  bool
	)

	cmd := &cobra.Command{
		Use:   "radial",
		Short: "Distance of points from the streamline through an anchor",
		Example: `  standardtransform radial -i synapses.csv --anchor 183013,83535,21480
  standardtransform radial -i synapses.csv --anchor 183013,83535,21480 --angle`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := startStage(loggerFromContext(ctx), "radial")

			a, err := parseVec(anchor)
			if err != nil {
				return fmt.Errorf("invalid anchor: %w", err)
			}
			sl, err := c.datasetStreamline(ctx)
			if err != nil {
				return err
			}
			pts, err := c.queryPoints(cmd, &q)
			if err != nil {
				return err
			}

			dist, theta, err := sl.RadialDistanceAngle(points.Single(a), pts, !q.raw)
			if err != nil {
				return err
			}
			cols := []column{{"radial_distance", dist.Slice()}}
			if angle {
				cols = append(cols, column{"radial_angle", theta.Slice()})
			}
			prog.done(dist.Len())
			return writeColumns(cmd.OutOrStdout(), cols, c.output())
		},
	}

	q.register(cmd)
	cmd.Flags().StringVarP(&anchor, "anchor", "a", "", "anchor point x,y,z (required)")
	cmd.Flags().BoolVar(&angle, "angle", false, "also write the angle around the streamline")
	_ = cmd.MarkFlagRequired("anchor")

	return cmd
}

// depthCommand creates the depth command.
func (c *CLI) depthCommand() *cobra.Command {
	var (
		q     queryFlags
		from  float64
		delta float64
	)

	cmd := &cobra.Command{
		Use:     "depth",
		Short:   "Depth of points measured along the streamline",
		Example: `  standardtransform depth -i cells.csv --from 0 --delta 0.5`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := startStage(loggerFromContext(ctx), "depth")

			sl, err := c.datasetStreamline(ctx)
			if err != nil {
				return err
			}
			pts, err := c.queryPoints(cmd, &q)
			if err != nil {
				return err
			}

			opts := streamline.DepthOptions{
				DepthFrom:       c.cfg.DepthAlong.DepthFrom,
				Delta:           c.cfg.DepthAlong.Delta,
				TransformPoints: !q.raw,
			}
			if cmd.Flags().Changed("from") {
				opts.DepthFrom = from
			}
			if cmd.Flags().Changed("delta") {
				opts.Delta = delta
			}

			depth, err := sl.DepthAlong(pts, opts)
			if err != nil {
				return err
			}
			prog.done(depth.Len())
			return writeColumns(cmd.OutOrStdout(), []column{{"depth", depth.Slice()}}, c.output())
		},
	}

	q.register(cmd)
	cmd.Flags().Float64Var(&from, "from", 0, "depth that reads as zero (default from config)")
	cmd.Flags().Float64Var(&delta, "delta", streamline.DefaultDelta, "integration spacing in microns (default from config)")

	return cmd
}

// straightenCommand creates the straighten command.
func (c *CLI) straightenCommand() *cobra.Command {
	var (
		q          queryFlags
		anchor     string
		depthAlong bool
		from       float64
		delta      float64
	)

	cmd := &cobra.Command{
		Use:   "straighten",
		Short: "Re-express points in the frame of a straightened streamline",
		Long: `Places every point at its radial distance and angle from the streamline,
measured around the anchor, so the streamline through the anchor becomes a
vertical line. Output is in oriented microns.`,
		Example: `  standardtransform straighten -i synapses.csv --anchor 183013,83535,21480 --depth-along`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := startStage(loggerFromContext(ctx), "straighten")

			a, err := parseVec(anchor)
			if err != nil {
				return fmt.Errorf("invalid anchor: %w", err)
			}
			sl, err := c.datasetStreamline(ctx)
			if err != nil {
				return err
			}
			pts, err := c.queryPoints(cmd, &q)
			if err != nil {
				return err
			}

			opts := streamline.RadialOptions{
				TransformPoints:      !q.raw,
				DepthAlongStreamline: depthAlong,
				DepthFrom:            c.cfg.DepthAlong.DepthFrom,
				Delta:                c.cfg.DepthAlong.Delta,
			}
			if cmd.Flags().Changed("from") {
				opts.DepthFrom = from
			}
			if cmd.Flags().Changed("delta") {
				opts.Delta = delta
			}

			out, err := sl.RadialPoints(points.Single(a), pts, opts)
			if err != nil {
				return err
			}
			prog.done(out.Len())
			return writeVecs(cmd.OutOrStdout(), out, c.output())
		},
	}

	q.register(cmd)
	cmd.Flags().StringVarP(&anchor, "anchor", "a", "", "anchor point x,y,z (required)")
	cmd.Flags().BoolVar(&depthAlong, "depth-along", false, "use depth along the streamline instead of raw depth")
	cmd.Flags().Float64Var(&from, "from", 0, "depth that reads as zero with --depth-along")
	cmd.Flags().Float64Var(&delta, "delta", streamline.DefaultDelta, "integration spacing with --depth-along")
	_ = cmd.MarkFlagRequired("anchor")

	return cmd
}

// streamlineCommand creates the streamline command.
func (c *CLI) streamlineCommand() *cobra.Command {
	var anchor string

	cmd := &cobra.Command{
		Use:   "streamline",
		Short: "Write the streamline through an anchor in dataset coordinates",
		Long: `Threads the dataset streamline through the anchor and writes one point per
streamline sample, in the input resolution, as a JSON array of 3-element
arrays.`,
		Example: `  standardtransform streamline --anchor 183013,83535,21480 > column.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseVec(anchor)
			if err != nil {
				return fmt.Errorf("invalid anchor: %w", err)
			}
			sl, err := c.datasetStreamline(cmd.Context())
			if err != nil {
				return err
			}
			return streamline.WritePoints(cmd.OutOrStdout(), sl.PointsTform(a))
		},
	}

	cmd.Flags().StringVarP(&anchor, "anchor", "a", "", "anchor point x,y,z (required)")
	_ = cmd.MarkFlagRequired("anchor")

	return cmd
}
