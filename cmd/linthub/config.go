// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linthub/linthub/internal/config"
)

// newConfigCommand creates the `linthub config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage linthub configuration",
		Long: `Manage linthub configuration.

Configuration is stored in:
  - Linux: ~/.config/linthub/config.cue
  - macOS: ~/Library/Application Support/linthub/config.cue
  - Windows: %APPDATA%\linthub\config.cue

Every key can be overridden with a LINTHUB_* environment variable, e.g.
LINTHUB_LOG_LEVEL=debug or LINTHUB_ANALYZERS_DOWNLOAD_ENABLED=false.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(showConfig(cmd, app))
		},
	})

	var (
		force bool
		dir   string
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(dir, force)
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("config:"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	initCmd.Flags().StringVar(&dir, "dir", "", "directory to write config.cue into (default is the user config directory)")
	cfgCmd.AddCommand(initCmd)

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	cfg, source, err := app.loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("// source: "+source))
	fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	return nil
}
