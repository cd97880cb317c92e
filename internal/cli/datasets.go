package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"standardtransform/pkg/config"
)

// datasetsCommand creates the datasets command.
func (c *CLI) datasetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List known datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.load(ctx); err != nil {
				return err
			}
			logger := loggerFromContext(ctx)
			for _, name := range c.reg.Names() {
				d, err := c.reg.Get(name)
				if err != nil {
					return err
				}
				if tform, err := d.TransformVx(); err == nil {
					logger.Debug(name + "\n" + tform.String())
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init <path>",
		Short: "Write the default configuration (.yaml or .toml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(args[0]); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("Wrote default config", "path", args[0])
			return nil
		},
	})

	return cmd
}
