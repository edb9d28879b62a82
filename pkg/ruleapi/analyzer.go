// SPDX-License-Identifier: MPL-2.0

package ruleapi

import (
	"golang.org/x/tools/go/analysis"
)

type (
	// Descriptor is the static metadata of one rule.
	Descriptor struct {
		// ID is the rule id reported in analysis.Diagnostic.Category.
		ID string
		// Title is a one-line summary of the rule.
		Title string
		// Category groups related rules (e.g., "style", "correctness").
		Category string
		// DefaultSeverity is the intrinsic severity of the rule's diagnostics.
		DefaultSeverity Severity
		// HelpURL points at the rule documentation (optional).
		HelpURL string
	}

	// Analyzer is the rule-analyzer capability: a go/analysis pass plus the
	// rules it may report.
	Analyzer interface {
		// Analysis returns the pass executed against a compiled unit.
		Analysis() *analysis.Analyzer
		// SupportedRules lists the descriptors of every rule the pass reports.
		SupportedRules() []Descriptor
	}

	staticAnalyzer struct {
		pass  *analysis.Analyzer
		rules []Descriptor
	}
)

// NewAnalyzer pairs a go/analysis pass with the rules it reports. When exactly
// one rule is declared, diagnostics reported without a Category are stamped
// with that rule id, which lets stock x/tools passes act as rule analyzers.
func NewAnalyzer(pass *analysis.Analyzer, rules ...Descriptor) Analyzer {
	if len(rules) == 1 {
		pass = withDefaultCategory(pass, rules[0].ID)
	}
	return &staticAnalyzer{pass: pass, rules: rules}
}

func (a *staticAnalyzer) Analysis() *analysis.Analyzer { return a.pass }

func (a *staticAnalyzer) SupportedRules() []Descriptor {
	out := make([]Descriptor, len(a.rules))
	copy(out, a.rules)
	return out
}

// DeclaresRule reports whether a declares the rule id.
func DeclaresRule(a Analyzer, id string) bool {
	for _, d := range a.SupportedRules() {
		if d.ID == id {
			return true
		}
	}
	return false
}

// withDefaultCategory returns a copy of pass whose Report fills an empty
// Category with id. Requires, fact types and result type are shared with the
// original so the copy can replace it in an analysis graph.
func withDefaultCategory(pass *analysis.Analyzer, id string) *analysis.Analyzer {
	run := pass.Run
	wrapped := &analysis.Analyzer{
		Name:             pass.Name,
		Doc:              pass.Doc,
		URL:              pass.URL,
		Requires:         pass.Requires,
		ResultType:       pass.ResultType,
		FactTypes:        pass.FactTypes,
		RunDespiteErrors: pass.RunDespiteErrors,
	}
	wrapped.Run = func(p *analysis.Pass) (any, error) {
		inner := *p
		inner.Analyzer = pass
		inner.Report = func(d analysis.Diagnostic) {
			if d.Category == "" {
				d.Category = id
			}
			p.Report(d)
		}
		return run(&inner)
	}
	return wrapped
}
