// SPDX-License-Identifier: MPL-2.0

// Package aggregate runs the analyzers of a provider set over a compiled unit
// and turns their diagnostics into filtered results.
package aggregate

import (
	"context"
	"slices"

	"golang.org/x/tools/go/analysis"

	"github.com/linthub/linthub/internal/provider"
	"github.com/linthub/linthub/internal/workspace"
	"github.com/linthub/linthub/pkg/ruleapi"
)

// UnknownRuleSeverity is the intrinsic severity of a diagnostic whose rule id
// no loaded provider declares.
const UnknownRuleSeverity = ruleapi.SeverityWarning

type (
	// Options filter a run. Zero values disable the corresponding filter.
	Options struct {
		// Providers restricts analyzers and results to these provider names.
		Providers []string
		// RuleIDs restricts results to these rule ids.
		RuleIDs []string
		// MinSeverity drops results below it, after ruleset overrides.
		MinSeverity ruleapi.Severity
		// File restricts results to one file.
		File string
	}

	// Result is one reported diagnostic. Lines and columns are 1-based.
	Result struct {
		ID          string           `json:"id"`
		Message     string           `json:"message"`
		Severity    ruleapi.Severity `json:"severity"`
		File        string           `json:"file"`
		StartLine   int              `json:"startLine"`
		StartColumn int              `json:"startColumn"`
		EndLine     int              `json:"endLine"`
		EndColumn   int              `json:"endColumn"`
		Provider    string           `json:"provider"`
		HasFix      bool             `json:"hasFix"`
	}

	// Report is the outcome of Run.
	Report struct {
		Results []Result
		// Errors lists analyzers that failed; their diagnostics are missing.
		Errors []error
	}
)

// Run executes the analyzers of set selected by opts.Providers over unit and
// returns the surviving diagnostics in emission order. Only context
// cancellation makes it fail.
func Run(ctx context.Context, unit *workspace.Unit, set provider.Set, opts Options) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	owners := libraryOf(set)
	selected := SelectAnalyzers(set, opts.Providers)
	passes := make([]*analysis.Analyzer, len(selected))
	for i, a := range selected {
		passes[i] = a.Analysis()
	}

	rep := unit.Analyze(passes)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	actions := set.Actions()
	file := ""
	if opts.File != "" {
		file = workspace.NormalizePath(opts.File)
	}

	out := &Report{Errors: rep.Errors}
	for _, f := range rep.Findings {
		d := f.Diagnostic
		id := d.Category

		intrinsic := UnknownRuleSeverity
		if desc, ok := set.Descriptor(id); ok {
			intrinsic = desc.DefaultSeverity
		}
		sev, keep := actions.Effective(id, intrinsic)
		if !keep {
			continue
		}

		if sev < opts.MinSeverity {
			continue
		}
		if len(opts.RuleIDs) > 0 && !slices.Contains(opts.RuleIDs, id) {
			continue
		}

		start := unit.Position(d.Pos)
		if file != "" && start.Filename != file {
			continue
		}

		providerName, ok := set.ProviderOf(id)
		if !ok {
			providerName = owners[f.Analyzer]
		}
		if len(opts.Providers) > 0 && !slices.Contains(opts.Providers, providerName) {
			continue
		}

		end := start
		if d.End.IsValid() {
			end = unit.Position(d.End)
		}
		out.Results = append(out.Results, Result{
			ID:          id,
			Message:     d.Message,
			Severity:    sev,
			File:        start.Filename,
			StartLine:   start.Line,
			StartColumn: start.Column,
			EndLine:     end.Line,
			EndColumn:   end.Column,
			Provider:    providerName,
			HasFix:      set.HasFix(id),
		})
	}
	return out, nil
}

// SelectAnalyzers returns the analyzers of set declaring at least one rule
// owned by one of providers. An empty filter selects every analyzer.
func SelectAnalyzers(set provider.Set, providers []string) []ruleapi.Analyzer {
	all := set.Analyzers()
	if len(providers) == 0 {
		return all
	}
	var out []ruleapi.Analyzer
	for _, a := range all {
		for _, d := range a.SupportedRules() {
			if name, ok := set.ProviderOf(d.ID); ok && slices.Contains(providers, name) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// SelectForRule returns the analyzers of set declaring id.
func SelectForRule(set provider.Set, id string) []ruleapi.Analyzer {
	var out []ruleapi.Analyzer
	for _, a := range set.Analyzers() {
		if ruleapi.DeclaresRule(a, id) {
			out = append(out, a)
		}
	}
	return out
}

func libraryOf(set provider.Set) map[*analysis.Analyzer]string {
	owners := make(map[*analysis.Analyzer]string)
	for _, lib := range set.Libraries() {
		for _, a := range lib.Analyzers {
			if _, ok := owners[a.Analysis()]; !ok {
				owners[a.Analysis()] = lib.Name
			}
		}
	}
	return owners
}
