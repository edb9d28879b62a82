// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/linthub/linthub/internal/engine"
	"github.com/linthub/linthub/internal/provider"
	"github.com/linthub/linthub/pkg/providerspec"
)

func newProvidersCommand(app *App) *cobra.Command {
	var analyzers []string
	cmd := &cobra.Command{
		Use:   "providers [dir]",
		Short: "List the rule providers that apply to a project",
		Long: `List the built-in providers and the plugins resolved for dir (default: the
current directory), with the rules each one declares.

Also prints the well-known provider aliases and the folders searched for them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(runProviders(cmd, app, dirArg(args), analyzers))
		},
	}
	cmd.Flags().StringSliceVar(&analyzers, "analyzer", nil, "additional provider reference (path or ${Alias})")
	return cmd
}

func runProviders(cmd *cobra.Command, app *App, dir string, analyzers []string) error {
	svc, err := app.start(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.engine.Close()

	sess, err := svc.engine.Prepare(cmd.Context(), engine.Request{Dir: dir, Analyzers: analyzers})
	if err != nil {
		return err
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render("Providers"))
	for _, lib := range sess.Set.Libraries() {
		printLibrary(app.stdout, lib)
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, TitleStyle.Render("Aliases"))
	for _, a := range providerspec.Aliases() {
		fmt.Fprintf(app.stdout, "  %s\t%s\n", a.Placeholder, a.FileName)
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, TitleStyle.Render("Search folders"))
	for _, d := range svc.engine.Resolver().SearchDirs() {
		fmt.Fprintf(app.stdout, "  %s\n", d)
	}

	printWarnings(app.stderr, sess.Set.Warnings())
	return nil
}

func printLibrary(w io.Writer, lib *provider.Library) {
	origin := "built-in"
	if lib.Path != "" {
		origin = lib.Path
	}
	fmt.Fprintf(w, "  %s %s\n", lib.Name, SubtitleStyle.Render("("+origin+")"))

	ids := make([]string, 0, len(lib.Descriptors))
	for id := range lib.Descriptors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		d := lib.Descriptors[id]
		fmt.Fprintf(w, "    %s\t%s\t%s\n", RuleStyle.Render(id), severityStyle(d.DefaultSeverity).Render(d.DefaultSeverity.String()), d.Title)
	}
}
