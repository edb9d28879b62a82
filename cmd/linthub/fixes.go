// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/linthub/linthub/internal/engine"
	"github.com/linthub/linthub/internal/fixes"
)

// targetArgs is the number of positional arguments naming a diagnostic.
const targetArgs = 4

type fixFlags struct {
	dir       string
	analyzers []string
	json      bool
	write     bool
}

func newFixesCommand(app *App) *cobra.Command {
	var f fixFlags
	cmd := &cobra.Command{
		Use:   "fixes <file> <rule> <line> <col>",
		Short: "List the fixes offered for one diagnostic",
		Long: `List the fixes offered for the diagnostic of rule at file:line:col.

Each line shows the equivalence key to pass to 'linthub fix', the fix title
and the fixer offering it. A diagnostic matches on its exact position first,
then on the first diagnostic of the rule on the same line.`,
		Args: cobra.ExactArgs(targetArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(runFixes(cmd, app, args, f))
		},
	}
	addFixFlags(cmd, &f)
	return cmd
}

func newFixCommand(app *App) *cobra.Command {
	var f fixFlags
	cmd := &cobra.Command{
		Use:   "fix <file> <rule> <line> <col> <key>",
		Short: "Apply one fix to a diagnostic",
		Long: `Apply the fix whose equivalence key is key to the diagnostic of rule at
file:line:col.

The fixed file text is printed to stdout unless --write is given, in which
case the file is rewritten in place.`,
		Args: cobra.ExactArgs(targetArgs + 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(runFix(cmd, app, args, f))
		},
	}
	addFixFlags(cmd, &f)
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, "rewrite the file instead of printing it")
	return cmd
}

func addFixFlags(cmd *cobra.Command, f *fixFlags) {
	cmd.Flags().StringVarP(&f.dir, "dir", "C", ".", "project directory")
	cmd.Flags().StringSliceVar(&f.analyzers, "analyzer", nil, "additional provider reference (path or ${Alias})")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the response as JSON")
}

func parseTarget(args []string) (fixes.Target, error) {
	line, err := strconv.Atoi(args[2])
	if err != nil || line < 1 {
		return fixes.Target{}, fmt.Errorf("invalid line %q", args[2])
	}
	col, err := strconv.Atoi(args[3])
	if err != nil || col < 1 {
		return fixes.Target{}, fmt.Errorf("invalid column %q", args[3])
	}
	return fixes.Target{File: args[0], RuleID: args[1], Line: line, Column: col}, nil
}

func runFixes(cmd *cobra.Command, app *App, args []string, f fixFlags) error {
	target, err := parseTarget(args)
	if err != nil {
		return err
	}

	svc, err := app.start(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.engine.Close()

	resp, err := svc.engine.GetFixes(cmd.Context(), engine.Request{Dir: f.dir, Analyzers: f.analyzers}, target)
	if err != nil {
		return err
	}
	if f.json {
		return writeJSON(app.stdout, resp)
	}

	for _, o := range resp.Offers {
		fmt.Fprintf(app.stdout, "%s\t%s\t(%s)\n", RuleStyle.Render(o.EquivalenceKey), o.Title, o.Fixer)
	}
	if len(resp.Offers) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("no fixes offered"))
	}
	printWarnings(app.stderr, resp.Warnings)
	return nil
}

func runFix(cmd *cobra.Command, app *App, args []string, f fixFlags) error {
	target, err := parseTarget(args)
	if err != nil {
		return err
	}
	key := args[targetArgs]

	svc, err := app.start(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.engine.Close()

	resp, err := svc.engine.ApplyFix(cmd.Context(), engine.Request{Dir: f.dir, Analyzers: f.analyzers}, target, key)
	if err != nil {
		return err
	}
	printWarnings(app.stderr, resp.Warnings)
	if resp.Outcome == nil {
		return fmt.Errorf("no fix %q offered for %s at %s:%d:%d", key, target.RuleID, target.File, target.Line, target.Column)
	}

	switch {
	case f.json:
		return writeJSON(app.stdout, resp)
	case f.write:
		if err := writeFilePreservingMode(resp.Outcome.File, []byte(resp.Outcome.Modified)); err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "%s %s: %s\n", SuccessStyle.Render("fixed"), displayPath(f.dir, resp.Outcome.File), resp.Outcome.Title)
		return nil
	default:
		_, err := fmt.Fprint(app.stdout, resp.Outcome.Modified)
		return err
	}
}

func writeFilePreservingMode(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, info.Mode().Perm())
}
