// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linthub/linthub/pkg/ruleapi"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the linthub version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(app.stdout, "linthub %s\n", getVersionString())
			fmt.Fprintf(app.stdout, "provider API version %d\n", ruleapi.APIVersion)
			return nil
		},
	}
}
