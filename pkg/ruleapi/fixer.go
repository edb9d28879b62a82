// SPDX-License-Identifier: MPL-2.0

package ruleapi

import (
	"context"
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/packages"
)

type (
	// ChangeSet is the set of text edits produced by a fix action. Positions
	// are relative to the file set of the compiled unit the diagnostic came from.
	ChangeSet []analysis.TextEdit

	// FixAction is one named, keyed correction offered for a diagnostic.
	FixAction struct {
		// Title is the human-readable description of the fix.
		Title string
		// EquivalenceKey identifies the action across repeated discovery runs.
		// Callers apply a fix by passing back this key.
		EquivalenceKey string
		// Compute produces the edits. It must not mutate anything.
		Compute func(ctx context.Context) (ChangeSet, error)
	}

	// FixContext carries one located diagnostic to a fixer's RegisterFixes
	// call and collects the actions offered for it.
	FixContext struct {
		// RuleID is the id of the located diagnostic.
		RuleID string
		// Diagnostic is the located diagnostic as reported by its analyzer.
		Diagnostic analysis.Diagnostic
		// Package is the package the diagnostic was reported in.
		Package *packages.Package
		// Fset is the file set positions are relative to.
		Fset *token.FileSet

		offers []FixAction
	}

	// Fixer is the fix-provider capability.
	Fixer interface {
		// Name identifies the fixer in fix listings.
		Name() string
		// FixableRuleIDs lists the rule ids the fixer can act on.
		FixableRuleIDs() []string
		// RegisterFixes offers zero or more actions for fc's diagnostic via fc.Offer.
		RegisterFixes(ctx context.Context, fc *FixContext) error
	}
)

// NewFixContext creates a FixContext for one located diagnostic.
func NewFixContext(ruleID string, d analysis.Diagnostic, pkg *packages.Package, fset *token.FileSet) *FixContext {
	return &FixContext{RuleID: ruleID, Diagnostic: d, Package: pkg, Fset: fset}
}

// Offer registers an action. Actions without a Compute function are ignored.
func (c *FixContext) Offer(action FixAction) {
	if action.Compute == nil {
		return
	}
	c.offers = append(c.offers, action)
}

// Offers returns the actions registered so far, in registration order.
func (c *FixContext) Offers() []FixAction {
	out := make([]FixAction, len(c.offers))
	copy(out, c.offers)
	return out
}

// File returns the syntax tree of the file containing the diagnostic, or nil
// when the package has no syntax for it.
func (c *FixContext) File() *ast.File {
	if c.Package == nil || c.Fset == nil {
		return nil
	}
	tf := c.Fset.File(c.Diagnostic.Pos)
	if tf == nil {
		return nil
	}
	for _, f := range c.Package.Syntax {
		if c.Fset.File(f.Pos()) == tf {
			return f
		}
	}
	return nil
}
