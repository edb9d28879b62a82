// SPDX-License-Identifier: MPL-2.0

// Package stylecop is the first-party StyleCop rule provider.
package stylecop

import (
	"github.com/linthub/linthub/pkg/ruleapi"
)

// Name is the logical provider name.
const Name = "StyleCop"

const (
	RuleErrorString = "STY001"
	RuleBoolCompare = "STY002"
	RuleExportedDoc = "STY003"
)

const helpBase = "https://linthub.dev/rules/"

var (
	errorStringRule = ruleapi.Descriptor{
		ID:              RuleErrorString,
		Title:           "Error strings are lowercase and unpunctuated",
		Category:        "style",
		DefaultSeverity: ruleapi.SeverityWarning,
		HelpURL:         helpBase + RuleErrorString,
	}
	boolCompareRule = ruleapi.Descriptor{
		ID:              RuleBoolCompare,
		Title:           "Comparison with a boolean literal",
		Category:        "style",
		DefaultSeverity: ruleapi.SeverityInfo,
		HelpURL:         helpBase + RuleBoolCompare,
	}
	exportedDocRule = ruleapi.Descriptor{
		ID:              RuleExportedDoc,
		Title:           "Exported function without doc comment",
		Category:        "documentation",
		DefaultSeverity: ruleapi.SeverityInfo,
		HelpURL:         helpBase + RuleExportedDoc,
	}
)

// Manifest describes the provider.
func Manifest() *ruleapi.Manifest {
	return &ruleapi.Manifest{
		APIVersion: ruleapi.APIVersion,
		Name:       Name,
		Analyzers: []ruleapi.AnalyzerFactory{
			ruleapi.AnalyzerOf("errorstring", ruleapi.NewAnalyzer(ErrorStringAnalyzer, errorStringRule)),
			ruleapi.AnalyzerOf("boolcompare", ruleapi.NewAnalyzer(BoolCompareAnalyzer, boolCompareRule)),
			ruleapi.AnalyzerOf("exporteddoc", ruleapi.NewAnalyzer(ExportedDocAnalyzer, exportedDocRule)),
		},
		Fixers: []ruleapi.FixerFactory{
			ruleapi.FixerOf("rewrite", ruleapi.SuggestedFixes("StyleCop rewrite", RuleErrorString, RuleBoolCompare)),
			{Name: "docstub", New: func() (ruleapi.Fixer, error) { return docStubFixer{}, nil }},
		},
	}
}
