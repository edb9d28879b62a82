// SPDX-License-Identifier: MPL-2.0

// Package vetcop is the first-party VetCop rule provider. It exposes a subset
// of the go vet passes as rules VET001 to VET009 and offers their suggested
// fixes.
package vetcop

import (
	"github.com/linthub/linthub/pkg/ruleapi"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
)

// Name is the logical provider name.
const Name = "VetCop"

type check struct {
	pass *analysis.Analyzer
	rule ruleapi.Descriptor
}

var checks = []check{
	{assign.Analyzer, rule("VET001", "Useless self-assignment", "correctness", ruleapi.SeverityWarning)},
	{bools.Analyzer, rule("VET002", "Suspicious boolean expression", "correctness", ruleapi.SeverityWarning)},
	{printf.Analyzer, rule("VET003", "Printf format mismatch", "correctness", ruleapi.SeverityWarning)},
	{stringintconv.Analyzer, rule("VET004", "string(int) conversion", "correctness", ruleapi.SeverityWarning)},
	{unusedresult.Analyzer, rule("VET005", "Unused result of a pure function", "correctness", ruleapi.SeverityWarning)},
	{nilfunc.Analyzer, rule("VET006", "Function compared with nil", "correctness", ruleapi.SeverityError)},
	{unreachable.Analyzer, rule("VET007", "Unreachable code", "maintainability", ruleapi.SeverityInfo)},
	{copylock.Analyzer, rule("VET008", "Lock copied by value", "concurrency", ruleapi.SeverityError)},
	{errorsas.Analyzer, rule("VET009", "errors.As target is not a pointer", "correctness", ruleapi.SeverityError)},
}

func rule(id, title, category string, sev ruleapi.Severity) ruleapi.Descriptor {
	return ruleapi.Descriptor{
		ID:              id,
		Title:           title,
		Category:        category,
		DefaultSeverity: sev,
		HelpURL:         "https://linthub.dev/rules/" + id,
	}
}

// RuleIDs lists the rule ids in declaration order.
func RuleIDs() []string {
	ids := make([]string, len(checks))
	for i, c := range checks {
		ids[i] = c.rule.ID
	}
	return ids
}

// Analyzers returns one rule analyzer per vet pass.
func Analyzers() []ruleapi.Analyzer {
	out := make([]ruleapi.Analyzer, len(checks))
	for i, c := range checks {
		out[i] = ruleapi.NewAnalyzer(c.pass, c.rule)
	}
	return out
}

// Manifest describes the provider.
func Manifest() *ruleapi.Manifest {
	m := &ruleapi.Manifest{
		APIVersion: ruleapi.APIVersion,
		Name:       Name,
		Fixers: []ruleapi.FixerFactory{
			ruleapi.FixerOf("suggested", ruleapi.SuggestedFixes("VetCop suggested fixes", RuleIDs()...)),
		},
	}
	for _, a := range Analyzers() {
		m.Analyzers = append(m.Analyzers, ruleapi.AnalyzerOf(a.Analysis().Name, a))
	}
	return m
}
