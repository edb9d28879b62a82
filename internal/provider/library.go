// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/tools/go/analysis"

	"github.com/linthub/linthub/pkg/ruleapi"
)

// ErrIncompatible reports a manifest built against another API version.
var ErrIncompatible = errors.New("incompatible provider API version")

// Library is one loaded provider. It is immutable after construction and
// shared read-only between requests.
type Library struct {
	// Name is the logical provider name from the manifest.
	Name string
	// Path is the plugin file, or "" for a compiled-in provider.
	Path        string
	Analyzers   []ruleapi.Analyzer
	Fixers      []ruleapi.Fixer
	Descriptors map[string]ruleapi.Descriptor
}

// FromManifest instantiates every factory of m and records the metadata each
// instance reports. A factory that fails, panics or returns nil is logged and
// skipped; the library keeps whatever loaded.
func FromManifest(m *ruleapi.Manifest, path string, logger *slog.Logger) (*Library, error) {
	if m == nil {
		return nil, errors.New("provider manifest is nil")
	}
	if m.APIVersion != ruleapi.APIVersion {
		return nil, fmt.Errorf("%w: %q targets version %d, host supports %d", ErrIncompatible, m.Name, m.APIVersion, ruleapi.APIVersion)
	}
	if m.Name == "" {
		return nil, errors.New("provider manifest has no name")
	}
	if logger == nil {
		logger = slog.Default()
	}

	lib := &Library{
		Name:        m.Name,
		Path:        path,
		Descriptors: make(map[string]ruleapi.Descriptor),
	}

	for _, f := range m.Analyzers {
		a, err := instantiate(f.New, snapshotAnalyzer)
		if err != nil {
			logger.Warn("skipping analyzer", "provider", m.Name, "analyzer", f.Name, "error", err)
			continue
		}
		lib.Analyzers = append(lib.Analyzers, a)
		for _, d := range a.rules {
			if _, dup := lib.Descriptors[d.ID]; !dup {
				lib.Descriptors[d.ID] = d
			}
		}
	}

	for _, f := range m.Fixers {
		fx, err := instantiate(f.New, snapshotFixer)
		if err != nil {
			logger.Warn("skipping fixer", "provider", m.Name, "fixer", f.Name, "error", err)
			continue
		}
		lib.Fixers = append(lib.Fixers, fx)
	}

	return lib, nil
}

// instantiate calls a factory and then build on its product, converting
// panics and nil results to errors.
func instantiate[T comparable, R any](newFn func() (T, error), build func(T) (R, error)) (r R, err error) {
	var zero R
	if newFn == nil {
		return zero, errors.New("factory has no constructor")
	}
	defer func() {
		if p := recover(); p != nil {
			r, err = zero, fmt.Errorf("factory panicked: %v", p)
		}
	}()

	v, err := newFn()
	if err != nil {
		return zero, err
	}
	var none T
	if v == none {
		return zero, ruleapi.ErrNilInstance
	}
	return build(v)
}

// loadedAnalyzer holds the pass and rules an analyzer reported at load time,
// so provider code is not called again outside a guarded run.
type loadedAnalyzer struct {
	pass  *analysis.Analyzer
	rules []ruleapi.Descriptor
}

func snapshotAnalyzer(a ruleapi.Analyzer) (*loadedAnalyzer, error) {
	pass := a.Analysis()
	if pass == nil {
		return nil, errors.New("analyzer has no analysis pass")
	}
	var rules []ruleapi.Descriptor
	for _, d := range a.SupportedRules() {
		if d.ID != "" {
			rules = append(rules, d)
		}
	}
	return &loadedAnalyzer{pass: pass, rules: rules}, nil
}

func (a *loadedAnalyzer) Analysis() *analysis.Analyzer { return a.pass }

func (a *loadedAnalyzer) SupportedRules() []ruleapi.Descriptor { return slices.Clone(a.rules) }

// loadedFixer caches the name and rule ids of a fixer. RegisterFixes still
// reaches the provider and is guarded by its caller.
type loadedFixer struct {
	ruleapi.Fixer
	name string
	ids  []string
}

func snapshotFixer(fx ruleapi.Fixer) (*loadedFixer, error) {
	ids := slices.DeleteFunc(slices.Clone(fx.FixableRuleIDs()), func(id string) bool { return id == "" })
	if len(ids) == 0 {
		return nil, errors.New("fixer declares no rule ids")
	}
	return &loadedFixer{Fixer: fx, name: fx.Name(), ids: ids}, nil
}

func (f *loadedFixer) Name() string { return f.name }

func (f *loadedFixer) FixableRuleIDs() []string { return slices.Clone(f.ids) }
