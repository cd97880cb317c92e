// Package cli implements the standardtransform command-line interface.
//
// Commands read point tables as CSV, move them between a dataset's native
// coordinates and oriented microns, and measure them against the dataset
// streamline. The CLI is built using cobra and logs via charmbracelet/log.
//
// # Commands
//
//   - apply: transform or project a point column
//   - radial: radial distance (and angle) from the streamline
//   - depth: depth measured along the streamline
//   - straighten: re-express points in the straightened streamline frame
//   - streamline: the streamline threaded through an anchor point
//   - datasets: list known datasets
//   - config init: write a default config file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"standardtransform/pkg/config"
	"standardtransform/pkg/datasets"
	"standardtransform/pkg/streamline"
	"standardtransform/pkg/transform"
)

const appName = "standardtransform"

// CLI holds shared state for all commands.
type CLI struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// persistent flags
	configPath string
	dataset    string
	resolution string
	format     string
	verbose    bool

	cfg *config.Config
	reg *datasets.Registry
}

// New creates a CLI reading from in, writing results to out and logs to
// errOut.
func New(in io.Reader, out, errOut io.Writer) *CLI {
	return &CLI{in: in, out: out, errOut: errOut}
}

// Execute runs the CLI on the process's standard streams.
func Execute(ctx context.Context) error {
	return New(os.Stdin, os.Stdout, os.Stderr).RootCommand().ExecuteContext(ctx)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Move connectomics points into oriented microns",
		Long:         `standardtransform maps point coordinates from imaging datasets into a shared frame with the pial surface at y = 0 and depth along +y, and measures points against a curved depth axis.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if c.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(c.errOut, level)))
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "config file (YAML or TOML); defaults are used when unset")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&c.dataset, "dataset", "d", "", "dataset name (default from config, minnie65)")
	pf.StringVar(&c.format, "format", "", `output format "csv" or "json" (default from config)`)
	pf.StringVarP(&c.resolution, "resolution", "r", "vx", `input resolution: "vx", "nm" or "x,y,z" in nanometers`)

	root.AddCommand(c.applyCommand())
	root.AddCommand(c.radialCommand())
	root.AddCommand(c.depthCommand())
	root.AddCommand(c.straightenCommand())
	root.AddCommand(c.streamlineCommand())
	root.AddCommand(c.datasetsCommand())
	root.AddCommand(c.configCommand())

	return root
}

// load reads the config file and builds the registry once.
func (c *CLI) load(ctx context.Context) error {
	if c.reg != nil {
		return nil
	}
	logger := loggerFromContext(ctx)

	cfg := config.DefaultConfig()
	if c.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(c.configPath); err != nil {
			return err
		}
		logger.Debug("loaded config", "path", c.configPath, "datasets", len(cfg.Datasets))
	}
	if cfg.Output.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	reg, err := datasets.NewRegistry(cfg)
	if err != nil {
		return fmt.Errorf("build datasets: %w", err)
	}
	c.cfg, c.reg = cfg, reg
	return nil
}

// selected returns the dataset named by --dataset or the config default.
func (c *CLI) selected(ctx context.Context) (*datasets.Dataset, error) {
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	name := c.dataset
	if name == "" {
		name = c.cfg.DefaultDataset
	}
	if name == "" {
		name = "minnie65"
	}
	return c.reg.Get(name)
}

// queryResolution resolves --resolution against d.
func (c *CLI) queryResolution(d *datasets.Dataset) (r3.Vec, error) {
	return parseResolution(c.resolution, d)
}

// transformSeq returns the dataset transform for the selected resolution.
func (c *CLI) transformSeq(ctx context.Context) (*transform.Sequence, error) {
	d, err := c.selected(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.queryResolution(d)
	if err != nil {
		return nil, err
	}
	tform, err := d.TransformRes(res)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("using transform", "dataset", d.Name, "resolution", res, "steps", tform.Len())
	return tform, nil
}

// datasetStreamline returns the dataset streamline for the selected resolution.
func (c *CLI) datasetStreamline(ctx context.Context) (*streamline.Streamline, error) {
	d, err := c.selected(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.queryResolution(d)
	if err != nil {
		return nil, err
	}
	sl, err := d.StreamlineRes(res)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("using streamline", "dataset", d.Name, "resolution", res, "samples", len(sl.Points()))
	return sl, nil
}

// output returns the configured output format and precision.
func (c *CLI) output() outputOptions {
	opts := outputOptions{Format: "csv", Precision: -1}
	if c.cfg != nil {
		opts = outputOptions{Format: c.cfg.Output.Format, Precision: c.cfg.Output.Precision}
	}
	if c.format != "" {
		opts.Format = c.format
	}
	return opts
}
