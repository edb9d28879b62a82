// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/linthub/linthub/internal/providers/stylecop"
	"github.com/linthub/linthub/internal/ruleset"
	"github.com/linthub/linthub/pkg/ruleapi"

	"golang.org/x/tools/go/analysis"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func stubPass(name string) *analysis.Analyzer {
	return &analysis.Analyzer{
		Name: name,
		Doc:  "stub",
		Run:  func(*analysis.Pass) (any, error) { return nil, nil },
	}
}

type stubFixer struct {
	name string
	ids  []string
}

func (f stubFixer) Name() string             { return f.name }
func (f stubFixer) FixableRuleIDs() []string { return f.ids }
func (f stubFixer) RegisterFixes(context.Context, *ruleapi.FixContext) error {
	return nil
}

func externalManifest(name string, rules ...ruleapi.Descriptor) ruleapi.ManifestFunc {
	return func() *ruleapi.Manifest {
		ids := make([]string, len(rules))
		for i, r := range rules {
			ids[i] = r.ID
		}
		return &ruleapi.Manifest{
			APIVersion: ruleapi.APIVersion,
			Name:       name,
			Analyzers: []ruleapi.AnalyzerFactory{
				ruleapi.AnalyzerOf("ext", ruleapi.NewAnalyzer(stubPass("ext"), rules...)),
			},
			Fixers: []ruleapi.FixerFactory{
				ruleapi.FixerOf("extfix", stubFixer{name: name + " fixer", ids: ids}),
			},
		}
	}
}

func mustLibrary(t *testing.T, fn ruleapi.ManifestFunc, path string) *Library {
	t.Helper()
	lib, err := FromManifest(fn(), path, discard)
	if err != nil {
		t.Fatalf("FromManifest() error = %v", err)
	}
	return lib
}

func TestFromManifest_SkipsBrokenFactories(t *testing.T) {
	t.Parallel()

	m := &ruleapi.Manifest{
		APIVersion: ruleapi.APIVersion,
		Name:       "Mixed",
		Analyzers: []ruleapi.AnalyzerFactory{
			{Name: "panics", New: func() (ruleapi.Analyzer, error) { panic("boom") }},
			{Name: "nil", New: func() (ruleapi.Analyzer, error) { return nil, nil }},
			{Name: "fails", New: func() (ruleapi.Analyzer, error) { return nil, errors.New("no") }},
			{Name: "missing"},
			ruleapi.AnalyzerOf("good", ruleapi.NewAnalyzer(stubPass("good"), ruleapi.Descriptor{ID: "G1"})),
		},
		Fixers: []ruleapi.FixerFactory{
			ruleapi.FixerOf("empty", stubFixer{name: "empty"}),
			ruleapi.FixerOf("ok", stubFixer{name: "ok", ids: []string{"G1"}}),
		},
	}

	lib, err := FromManifest(m, "/plugins/mixed.so", discard)
	if err != nil {
		t.Fatalf("FromManifest() error = %v", err)
	}
	if len(lib.Analyzers) != 1 || len(lib.Fixers) != 1 {
		t.Fatalf("loaded %d analyzers and %d fixers, want 1 and 1", len(lib.Analyzers), len(lib.Fixers))
	}
	if _, ok := lib.Descriptors["G1"]; !ok {
		t.Error("descriptor G1 missing")
	}
	if lib.Path != "/plugins/mixed.so" {
		t.Errorf("Path = %q", lib.Path)
	}
}

type rulelessAnalyzer struct{}

func (rulelessAnalyzer) Analysis() *analysis.Analyzer         { return stubPass("ruleless") }
func (rulelessAnalyzer) SupportedRules() []ruleapi.Descriptor { panic("no rules") }

type namelessFixer struct{ stubFixer }

func (namelessFixer) FixableRuleIDs() []string { panic("no ids") }

func TestFromManifest_GuardsMetadataCalls(t *testing.T) {
	t.Parallel()

	lib, err := FromManifest(&ruleapi.Manifest{
		APIVersion: ruleapi.APIVersion,
		Name:       "Shaky",
		Analyzers: []ruleapi.AnalyzerFactory{
			ruleapi.AnalyzerOf("ruleless", rulelessAnalyzer{}),
			ruleapi.AnalyzerOf("blank", ruleapi.NewAnalyzer(stubPass("blank"), ruleapi.Descriptor{}, ruleapi.Descriptor{ID: "S1"})),
		},
		Fixers: []ruleapi.FixerFactory{ruleapi.FixerOf("nameless", namelessFixer{})},
	}, "/plugins/shaky.so", discard)
	if err != nil {
		t.Fatalf("FromManifest() error = %v", err)
	}
	if len(lib.Analyzers) != 1 || len(lib.Fixers) != 0 {
		t.Fatalf("loaded %d analyzers and %d fixers, want 1 and 0", len(lib.Analyzers), len(lib.Fixers))
	}
	rules := lib.Analyzers[0].SupportedRules()
	if len(rules) != 1 || rules[0].ID != "S1" {
		t.Errorf("SupportedRules() = %+v, want only S1", rules)
	}

	c := NewComposite(NewRegistry(discard), []*Library{lib}, nil, nil)
	if _, ok := c.ProviderOf(""); ok {
		t.Error("empty rule id indexed")
	}
}

func TestFromManifest_RejectsWrongVersion(t *testing.T) {
	t.Parallel()

	_, err := FromManifest(&ruleapi.Manifest{APIVersion: ruleapi.APIVersion + 1, Name: "Future"}, "", discard)
	if !errors.Is(err, ErrIncompatible) {
		t.Fatalf("error = %v, want ErrIncompatible", err)
	}
	if _, err := FromManifest(nil, "", discard); err == nil {
		t.Error("nil manifest should fail")
	}
}

func TestNewRegistry_Builtins(t *testing.T) {
	t.Parallel()

	broken := func() *ruleapi.Manifest { panic("broken manifest") }
	reg := NewRegistry(discard, append([]ruleapi.ManifestFunc{broken}, Builtins()...)...)

	libs := reg.Libraries()
	if len(libs) != 2 || libs[0].Name != "StyleCop" || libs[1].Name != "VetCop" {
		t.Fatalf("libraries = %v", libs)
	}
	if name, _ := reg.ProviderOf(stylecop.RuleErrorString); name != "StyleCop" {
		t.Errorf("ProviderOf(STY001) = %q", name)
	}
	if !reg.HasFix(stylecop.RuleExportedDoc) {
		t.Error("STY003 should have a fixer")
	}
	if reg.Actions() != nil || reg.Warnings() != nil {
		t.Error("registry carries no actions or warnings")
	}
}

func TestComposite_BuiltinsWinCollisions(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(discard, Builtins()...)
	ext := mustLibrary(t, externalManifest("Acme",
		ruleapi.Descriptor{ID: stylecop.RuleErrorString, Title: "acme override", DefaultSeverity: ruleapi.SeverityHidden},
		ruleapi.Descriptor{ID: "ACME1", Title: "acme rule", DefaultSeverity: ruleapi.SeverityError},
	), "/p/acme.so")

	c := NewComposite(reg, []*Library{ext}, []string{"w1"}, nil)

	d, _ := c.Descriptor(stylecop.RuleErrorString)
	if d.Title == "acme override" || d.DefaultSeverity != ruleapi.SeverityWarning {
		t.Errorf("STY001 descriptor = %+v, want the StyleCop one", d)
	}
	if name, _ := c.ProviderOf(stylecop.RuleErrorString); name != "StyleCop" {
		t.Errorf("ProviderOf(STY001) = %q, want StyleCop", name)
	}
	if name, _ := c.ProviderOf("ACME1"); name != "Acme" {
		t.Errorf("ProviderOf(ACME1) = %q, want Acme", name)
	}
	if got := len(c.FixersFor(stylecop.RuleErrorString)); got != 2 {
		t.Errorf("FixersFor(STY001) = %d fixers, want built-in plus Acme", got)
	}

	all := c.Analyzers()
	if len(all) != len(reg.Analyzers())+1 || all[len(all)-1] != ext.Analyzers[0] {
		t.Error("external analyzers must follow built-in ones")
	}
	if w := c.Warnings(); len(w) != 1 || w[0] != "w1" {
		t.Errorf("Warnings() = %v", w)
	}
}

func TestComposite_DropsBuiltinNamesAndDuplicates(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(discard, Builtins()...)
	impostor := mustLibrary(t, externalManifest("StyleCop", ruleapi.Descriptor{ID: "FAKE1"}), "/p/stylecop.so")
	ext := mustLibrary(t, externalManifest("Acme", ruleapi.Descriptor{ID: "ACME1"}), "/p/acme.so")

	c := NewComposite(reg, []*Library{impostor, ext, ext, nil}, nil, ruleset.ActionMap{})

	if _, ok := c.Descriptor("FAKE1"); ok {
		t.Error("library named like a built-in must be dropped")
	}
	if got := len(c.Libraries()); got != 3 {
		t.Errorf("Libraries() = %d, want 3", got)
	}
	if c.Actions() == nil {
		t.Error("an empty ruleset must stay present")
	}
}

func TestComposite_FixerIndexIsPerRequest(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(discard, Builtins()...)
	ext := mustLibrary(t, externalManifest("Acme", ruleapi.Descriptor{ID: "ACME1"}), "/p/acme.so")

	first := NewComposite(reg, []*Library{ext}, nil, nil)
	second := NewComposite(reg, nil, nil, nil)

	if !first.HasFix("ACME1") {
		t.Error("first composite should see the Acme fixer")
	}
	if second.HasFix("ACME1") {
		t.Error("fixers must not leak into later composites")
	}
	if _, ok := reg.Descriptor("ACME1"); ok {
		t.Error("composites must not mutate the registry")
	}
}
