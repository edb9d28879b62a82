// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/linthub/linthub/internal/engine"
	"github.com/linthub/linthub/internal/ruleset"
)

type rulesetView struct {
	RequestID string            `json:"requestId"`
	Path      string            `json:"path,omitempty"`
	Actions   ruleset.ActionMap `json:"actions"`
	Warnings  []string          `json:"warnings"`
}

func newRulesetCommand(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ruleset [dir]",
		Short: "Show the merged ruleset of a project",
		Long: `Show which ruleset applies to dir (default: the current directory) and the
action it assigns to each rule after all includes are merged.

The ruleset is the one named by the editor setting linthub.ruleSetPath, then
by rulesetFile in .linthub/settings.*, then the first of
linthub.ruleset.json, .linthub.ruleset.json and main.ruleset.json found in
the project or repository root.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(runRuleset(cmd, app, dirArg(args), asJSON))
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the ruleset as JSON")
	return cmd
}

func runRuleset(cmd *cobra.Command, app *App, dir string, asJSON bool) error {
	svc, err := app.start(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.engine.Close()

	sess, err := svc.engine.Prepare(cmd.Context(), engine.Request{Dir: dir})
	if err != nil {
		return err
	}
	view := rulesetView{
		RequestID: sess.ID,
		Path:      sess.Ruleset,
		Actions:   sess.Set.Actions(),
		Warnings:  sess.Set.Warnings(),
	}
	if asJSON {
		if view.Actions == nil {
			view.Actions = ruleset.ActionMap{}
		}
		if view.Warnings == nil {
			view.Warnings = []string{}
		}
		return writeJSON(app.stdout, view)
	}

	if view.Path == "" {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("no ruleset applies"))
	} else {
		fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render("ruleset:"), view.Path)
	}
	ids := make([]string, 0, len(view.Actions))
	for id := range view.Actions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fmt.Fprintf(app.stdout, "  %s\t%s\n", RuleStyle.Render(id), view.Actions[id])
	}
	printWarnings(app.stderr, view.Warnings)
	return nil
}
