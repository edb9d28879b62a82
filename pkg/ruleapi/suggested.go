// SPDX-License-Identifier: MPL-2.0

package ruleapi

import (
	"context"
	"slices"
)

type suggestedFixer struct {
	name string
	ids  []string
}

// SuggestedFixes returns a Fixer that offers the SuggestedFixes an analyzer
// attached to its own diagnostics. Each suggested fix becomes one action keyed
// "<rule-id>:<fix message>".
func SuggestedFixes(name string, ruleIDs ...string) Fixer {
	return &suggestedFixer{name: name, ids: slices.Clone(ruleIDs)}
}

func (f *suggestedFixer) Name() string { return f.name }

func (f *suggestedFixer) FixableRuleIDs() []string { return slices.Clone(f.ids) }

func (f *suggestedFixer) RegisterFixes(_ context.Context, fc *FixContext) error {
	for _, sf := range fc.Diagnostic.SuggestedFixes {
		edits := slices.Clone(sf.TextEdits)
		fc.Offer(FixAction{
			Title:          sf.Message,
			EquivalenceKey: fc.RuleID + ":" + sf.Message,
			Compute: func(context.Context) (ChangeSet, error) {
				return ChangeSet(edits), nil
			},
		})
	}
	return nil
}
