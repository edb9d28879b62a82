// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/tools/go/analysis"
)

// guards maps analyzers to copies whose Run recovers panics. A panic in a
// pass is reported as that pass's error for the package; the checker then
// skips the passes depending on it and the rest of the run goes on.
type guards map[*analysis.Analyzer]*analysis.Analyzer

func (g guards) wrap(a *analysis.Analyzer) *analysis.Analyzer {
	if w, ok := g[a]; ok {
		return w
	}
	w := &analysis.Analyzer{
		Name:             a.Name,
		Doc:              a.Doc,
		URL:              a.URL,
		ResultType:       a.ResultType,
		FactTypes:        a.FactTypes,
		RunDespiteErrors: a.RunDespiteErrors,
	}
	g[a] = w
	w.Requires = make([]*analysis.Analyzer, len(a.Requires))
	for i, req := range a.Requires {
		w.Requires[i] = g.wrap(req)
	}
	w.Run = func(p *analysis.Pass) (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Debug("analyzer panicked", "analyzer", a.Name, "stack", string(debug.Stack()))
				result, err = nil, fmt.Errorf("analyzer %s panicked: %v", a.Name, r)
			}
		}()
		inner := *p
		inner.Analyzer = a
		inner.ResultOf = make(map[*analysis.Analyzer]any, len(a.Requires))
		for i, req := range a.Requires {
			inner.ResultOf[req] = p.ResultOf[w.Requires[i]]
		}
		return a.Run(&inner)
	}
	return w
}

func (g guards) wrapAll(analyzers []*analysis.Analyzer) []*analysis.Analyzer {
	out := make([]*analysis.Analyzer, len(analyzers))
	for i, a := range analyzers {
		out[i] = g.wrap(a)
	}
	return out
}
