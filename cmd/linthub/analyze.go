// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linthub/linthub/internal/aggregate"
	"github.com/linthub/linthub/internal/engine"
	"github.com/linthub/linthub/internal/watch"
	"github.com/linthub/linthub/pkg/ruleapi"
)

type analyzeFlags struct {
	providers   []string
	rules       []string
	minSeverity string
	file        string
	analyzers   []string
	json        bool
	watch       bool
}

func newAnalyzeCommand(app *App) *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Analyze a Go module",
		Long: `Analyze the Go module in dir (default: the current directory).

Results are printed as file:line:column: severity rule: message. The command
exits with status 1 when any error-severity result remains after the ruleset
and filters are applied.

With --watch the module is analyzed again whenever a Go source, go.mod, a
ruleset or a settings file changes, until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fail(runAnalyze(cmd, app, dirArg(args), f))
		},
	}
	cmd.Flags().StringSliceVar(&f.providers, "provider", nil, "only run analyzers of these providers")
	cmd.Flags().StringSliceVar(&f.rules, "rule", nil, "only report these rule ids")
	cmd.Flags().StringVar(&f.minSeverity, "min-severity", "", "drop results below this severity (hidden, info, warning, error)")
	cmd.Flags().StringVar(&f.file, "file", "", "only report results in this file")
	cmd.Flags().StringSliceVar(&f.analyzers, "analyzer", nil, "additional provider reference (path or ${Alias})")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the response as JSON")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "re-run when project inputs change")
	return cmd
}

func runAnalyze(cmd *cobra.Command, app *App, dir string, f analyzeFlags) error {
	opts := aggregate.Options{
		Providers: f.providers,
		RuleIDs:   f.rules,
		File:      f.file,
	}
	if f.minSeverity != "" {
		s, err := ruleapi.ParseSeverity(f.minSeverity)
		if err != nil {
			return err
		}
		opts.MinSeverity = s
	}

	svc, err := app.start(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.engine.Close()

	req := engine.Request{Dir: dir, Analyzers: f.analyzers}
	analyze := func(ctx context.Context) (int, error) {
		resp, err := svc.engine.Analyze(ctx, req, opts)
		if err != nil {
			return 0, err
		}
		if f.json {
			if err := writeJSON(app.stdout, resp); err != nil {
				return 0, err
			}
		} else {
			printResults(app.stdout, dir, resp.Results)
			printWarnings(app.stderr, resp.Warnings)
		}
		return countErrors(resp.Results), nil
	}

	n, err := analyze(cmd.Context())
	if f.watch {
		if err != nil {
			fmt.Fprintln(app.stderr, ErrorStyle.Render("error: ")+formatErrorForDisplay(err, app.verbose))
		}
		return watchAnalyze(cmd.Context(), app, svc, dir, analyze)
	}
	if err != nil {
		return err
	}
	if n > 0 {
		return &ExitError{Code: ExitFindings, Err: fmt.Errorf("%d error-severity result(s)", n)}
	}
	return nil
}

// watchAnalyze re-runs analyze on every settled batch of changes until ctx
// is done.
func watchAnalyze(ctx context.Context, app *App, svc *services, dir string, analyze func(context.Context) (int, error)) error {
	w, err := watch.New(watch.Config{
		Dir:    dir,
		Logger: svc.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			svc.engine.Refresh()
			fmt.Fprintln(app.stderr, SubtitleStyle.Render(fmt.Sprintf("changed: %s", strings.Join(changed, ", "))))
			_, err := analyze(ctx)
			return err
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(app.stderr, SubtitleStyle.Render("watching for changes (Ctrl+C to stop)"))
	return w.Run(ctx)
}

func printResults(w io.Writer, dir string, results []aggregate.Result) {
	for _, r := range results {
		sev := severityStyle(r.Severity)
		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s (%s)\n",
			displayPath(dir, r.File), r.StartLine, r.StartColumn,
			sev.Render(r.Severity.String()), RuleStyle.Render(r.ID), r.Message, r.Provider)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, SuccessStyle.Render("no results"))
	}
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintln(w, WarningStyle.Render("warning: ")+msg)
	}
}

func countErrors(results []aggregate.Result) int {
	n := 0
	for _, r := range results {
		if r.Severity == ruleapi.SeverityError {
			n++
		}
	}
	return n
}

// displayPath shortens file to a path relative to dir when it lies inside it.
func displayPath(dir, file string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return file
	}
	rel, err := filepath.Rel(abs, file)
	if err != nil || !filepath.IsLocal(rel) {
		return file
	}
	return rel
}

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
