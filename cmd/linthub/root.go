// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/linthub/linthub/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the linthub command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "linthub",
		Short: "A Go lint aggregator with pluggable rule providers",
		Long: TitleStyle.Render("linthub") + SubtitleStyle.Render(" - A Go lint aggregator with pluggable rule providers") + `

linthub runs the analyzers of every rule provider that applies to a Go
module: the built-in StyleCop and VetCop providers plus any plugin listed
in the project's editor settings. A ruleset file can raise, lower or
suppress the severity of each rule.

` + SubtitleStyle.Render("Examples:") + `
  linthub analyze                    Analyze the module in the current directory
  linthub analyze --min-severity warning ./svc
  linthub fixes main.go STY001 12 9  List fixes for one diagnostic
  linthub ruleset                    Show the merged ruleset
  linthub providers                  List providers and plugin search folders`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/linthub/config.cue)")

	rootCmd.AddCommand(
		newAnalyzeCommand(app),
		newFixesCommand(app),
		newFixCommand(app),
		newRulesetCommand(app),
		newProvidersCommand(app),
		newConfigCommand(app),
		newVersionCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's exit code.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitFailure)
	}
}

// fail prepares err for fang. In verbose mode the issue guide attached to an
// ActionableError is rendered to stderr first.
func (a *App) fail(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if a.verbose {
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			if guide := ae.Guide(); guide != nil {
				if out, rerr := guide.Render("auto"); rerr == nil {
					fmt.Fprintln(a.stderr, out)
				}
			}
		}
	}
	return &ExitError{Code: ExitFailure, Err: &displayError{msg: formatErrorForDisplay(err, a.verbose), cause: err}}
}

// displayError carries the formatted message fang prints while keeping the
// cause reachable through errors.Is and errors.As.
type displayError struct {
	msg   string
	cause error
}

func (e *displayError) Error() string { return e.msg }

func (e *displayError) Unwrap() error { return e.cause }

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
