// SPDX-License-Identifier: MPL-2.0

// Package fixes locates one diagnostic in a compiled unit and lists or
// applies the fixes offered for it.
//
// The analyzers declaring the rule are re-run over the whole unit, since some
// only report from a unit-wide pass. The diagnostic is matched on its exact
// start position first, then on the first diagnostic of the rule on the same
// line. Applying a fix computes the new file text; nothing is written.
package fixes

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/tools/go/analysis"

	"github.com/linthub/linthub/internal/aggregate"
	"github.com/linthub/linthub/internal/provider"
	"github.com/linthub/linthub/internal/workspace"
	"github.com/linthub/linthub/pkg/ruleapi"
)

type (
	// Target identifies a diagnostic. Line and Column are 1-based.
	Target struct {
		File   string `json:"file"`
		RuleID string `json:"ruleId"`
		Line   int    `json:"line"`
		Column int    `json:"column"`
	}

	// Offer is one fix available for a diagnostic.
	Offer struct {
		Title          string `json:"title"`
		EquivalenceKey string `json:"equivalenceKey"`
		RuleID         string `json:"ruleId"`
		Fixer          string `json:"fixer"`
	}

	// Outcome is the result of applying a fix.
	Outcome struct {
		File     string `json:"file"`
		Original string `json:"original"`
		Modified string `json:"modified"`
		Title    string `json:"title"`
	}

	candidate struct {
		fixer  ruleapi.Fixer
		action ruleapi.FixAction
	}
)

// List returns every fix offered for the diagnostic at target. It is empty
// when no fixer handles the rule or no such diagnostic exists.
func List(ctx context.Context, unit *workspace.Unit, set provider.Set, target Target) ([]Offer, error) {
	cands, err := discover(ctx, unit, set, target)
	if err != nil {
		return nil, err
	}
	offers := make([]Offer, 0, len(cands))
	for _, c := range cands {
		offers = append(offers, Offer{
			Title:          c.action.Title,
			EquivalenceKey: c.action.EquivalenceKey,
			RuleID:         target.RuleID,
			Fixer:          c.fixer.Name(),
		})
	}
	return offers, nil
}

// Apply computes the text of target.File after the first offered fix whose
// equivalence key equals key. The outcome is nil when nothing matches.
func Apply(ctx context.Context, unit *workspace.Unit, set provider.Set, target Target, key string) (*Outcome, error) {
	cands, err := discover(ctx, unit, set, target)
	if err != nil {
		return nil, err
	}
	for _, c := range cands {
		if c.action.EquivalenceKey != key {
			continue
		}
		changes, err := compute(ctx, c.action)
		if err != nil {
			return nil, fmt.Errorf("computing fix %q: %w", c.action.Title, err)
		}
		original, modified, err := unit.ApplyEdits(target.File, changes)
		if err != nil {
			return nil, fmt.Errorf("applying fix %q: %w", c.action.Title, err)
		}
		return &Outcome{
			File:     workspace.NormalizePath(target.File),
			Original: string(original),
			Modified: string(modified),
			Title:    c.action.Title,
		}, nil
	}
	return nil, nil
}

func discover(ctx context.Context, unit *workspace.Unit, set provider.Set, target Target) ([]candidate, error) {
	fixers := set.FixersFor(target.RuleID)
	if len(fixers) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analyzers := aggregate.SelectForRule(set, target.RuleID)
	passes := make([]*analysis.Analyzer, len(analyzers))
	for i, a := range analyzers {
		passes[i] = a.Analysis()
	}
	rep := unit.Analyze(passes)
	for _, err := range rep.Errors {
		slog.Debug("analyzer error while locating fix", "rule", target.RuleID, "error", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found, ok := locate(unit, rep.Findings, target)
	if !ok {
		return nil, nil
	}

	var cands []candidate
	for _, fx := range fixers {
		fc := ruleapi.NewFixContext(target.RuleID, found.Diagnostic, found.Package, unit.Fset)
		if err := register(ctx, fx, fc); err != nil {
			slog.Warn("fixer failed", "fixer", fx.Name(), "rule", target.RuleID, "error", err)
			continue
		}
		for _, a := range fc.Offers() {
			cands = append(cands, candidate{fixer: fx, action: a})
		}
	}
	return cands, nil
}

// locate finds the diagnostic at target: exact start position, else the
// first diagnostic of the rule on the same line.
func locate(unit *workspace.Unit, findings []workspace.Finding, target Target) (workspace.Finding, bool) {
	file := workspace.NormalizePath(target.File)

	var sameLine *workspace.Finding
	for i := range findings {
		f := &findings[i]
		if f.Diagnostic.Category != target.RuleID {
			continue
		}
		pos := unit.Position(f.Diagnostic.Pos)
		if pos.Filename != file || pos.Line != target.Line {
			continue
		}
		if pos.Column == target.Column {
			return *f, true
		}
		if sameLine == nil {
			sameLine = f
		}
	}
	if sameLine != nil {
		return *sameLine, true
	}
	return workspace.Finding{}, false
}

func register(ctx context.Context, fx ruleapi.Fixer, fc *ruleapi.FixContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fixer panicked: %v", r)
		}
	}()
	return fx.RegisterFixes(ctx, fc)
}

func compute(ctx context.Context, action ruleapi.FixAction) (changes ruleapi.ChangeSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			changes, err = nil, fmt.Errorf("fix action panicked: %v", r)
		}
	}()
	return action.Compute(ctx)
}
