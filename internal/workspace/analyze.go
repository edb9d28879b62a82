// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"fmt"
	"reflect"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/checker"
	"golang.org/x/tools/go/packages"
)

type (
	// Finding is one diagnostic with the pass and package that reported it.
	Finding struct {
		Analyzer   *analysis.Analyzer
		Package    *packages.Package
		Diagnostic analysis.Diagnostic
	}

	// Report is the outcome of Analyze.
	Report struct {
		// Findings are ordered by analyzer, then package, then emission.
		Findings []Finding
		// Errors lists analyzers that were rejected or failed on a package.
		Errors []error
	}
)

// Analyze runs analyzers over every package of the unit. Repeated analyzers
// run once. Analyzers that declare the same fact type, which one checker run
// refuses, are spread over separate runs. A pass that panics fails like one
// returning an error.
func (u *Unit) Analyze(analyzers []*analysis.Analyzer) *Report {
	rep := &Report{}

	var valid []*analysis.Analyzer
	seen := make(map[*analysis.Analyzer]bool)
	for _, a := range analyzers {
		if a == nil || seen[a] {
			continue
		}
		seen[a] = true
		if err := analysis.Validate([]*analysis.Analyzer{a}); err != nil {
			rep.Errors = append(rep.Errors, fmt.Errorf("analyzer rejected: %w", err))
			continue
		}
		valid = append(valid, a)
	}

	g := make(guards)
	roots := make(map[*analysis.Analyzer][]*checker.Action)
	for _, batch := range batchByFacts(valid) {
		graph, err := checker.Analyze(g.wrapAll(batch), u.Packages, nil)
		if err != nil {
			rep.Errors = append(rep.Errors, err)
			continue
		}
		for _, act := range graph.Roots {
			roots[act.Analyzer] = append(roots[act.Analyzer], act)
		}
	}

	for _, a := range valid {
		for _, act := range roots[g[a]] {
			if act.Err != nil {
				rep.Errors = append(rep.Errors, fmt.Errorf("%s on %s: %w", a.Name, act.Package.PkgPath, act.Err))
			}
			for _, d := range act.Diagnostics {
				rep.Findings = append(rep.Findings, Finding{Analyzer: a, Package: act.Package, Diagnostic: d})
			}
		}
	}
	return rep
}

// batchByFacts places each analyzer in the first batch that has none of its
// fact types, keeping input order within a batch.
func batchByFacts(analyzers []*analysis.Analyzer) [][]*analysis.Analyzer {
	var (
		batches [][]*analysis.Analyzer
		owners  []map[reflect.Type]*analysis.Analyzer
	)
	for _, a := range analyzers {
		facts := factTypes(a)
		placed := false
		for i := range batches {
			if conflicts(owners[i], facts) {
				continue
			}
			claim(owners[i], facts)
			batches[i] = append(batches[i], a)
			placed = true
			break
		}
		if !placed {
			owned := make(map[reflect.Type]*analysis.Analyzer)
			claim(owned, facts)
			batches = append(batches, []*analysis.Analyzer{a})
			owners = append(owners, owned)
		}
	}
	return batches
}

// factTypes maps every fact type in a's Requires closure to its declaring pass.
func factTypes(a *analysis.Analyzer) map[reflect.Type]*analysis.Analyzer {
	out := make(map[reflect.Type]*analysis.Analyzer)
	var walk func(*analysis.Analyzer)
	walk = func(x *analysis.Analyzer) {
		for _, f := range x.FactTypes {
			t := reflect.TypeOf(f)
			if _, ok := out[t]; ok {
				continue
			}
			out[t] = x
		}
		for _, req := range x.Requires {
			walk(req)
		}
	}
	walk(a)
	return out
}

// conflicts reports whether a fact type is already owned by another pass.
func conflicts(owned, facts map[reflect.Type]*analysis.Analyzer) bool {
	for t, a := range facts {
		if prev, ok := owned[t]; ok && prev != a {
			return true
		}
	}
	return false
}

func claim(owned, facts map[reflect.Type]*analysis.Analyzer) {
	for t, a := range facts {
		owned[t] = a
	}
}
