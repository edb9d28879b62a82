// SPDX-License-Identifier: MPL-2.0

package workspace_test

import (
	"errors"
	"go/ast"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linthub/linthub/internal/testutil"
	"github.com/linthub/linthub/internal/workspace"
	"github.com/linthub/linthub/pkg/ruleapi"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/ast/inspector"
)

const sample = `package sample

import "fmt"

func Greet(name string) {
	fmt.Printf("%d\n", name)
}
`

func TestPackagesLoader_HardFailures(t *testing.T) {
	t.Parallel()

	l := &workspace.PackagesLoader{}

	outside := t.TempDir()
	if _, inModule := workspace.FindModule(outside); !inModule {
		if _, err := l.Load(t.Context(), outside); !errors.Is(err, workspace.ErrNoModule) {
			t.Errorf("error = %v, want ErrNoModule", err)
		}
	}

	empty := testutil.WriteModule(t, map[string]string{"README.md": "nothing here\n"})
	if _, err := l.Load(t.Context(), empty); !errors.Is(err, workspace.ErrNoPackages) {
		t.Errorf("error = %v, want ErrNoPackages", err)
	}
}

func TestUnit_Files(t *testing.T) {
	t.Parallel()

	u := testutil.LoadUnit(t, map[string]string{"sample.go": sample, "sub/b.go": "package sub\n"})

	files := u.Files()
	if len(files) != 2 {
		t.Fatalf("Files() = %v", files)
	}
	target := filepath.Join(u.Dir, "sample.go")
	if !u.HasFile(target) {
		t.Errorf("HasFile(%q) = false", target)
	}
	if p, ok := u.PackageOf(filepath.Join(u.Dir, "sub", "b.go")); !ok || p.Name != "sub" {
		t.Errorf("PackageOf(sub/b.go) = %v, %v", p, ok)
	}
	if _, err := u.ReadFile(filepath.Join(u.Dir, "nope.go")); !errors.Is(err, workspace.ErrUnknownFile) {
		t.Errorf("ReadFile(nope.go) error = %v", err)
	}
}

func TestUnit_ApplyEdits(t *testing.T) {
	t.Parallel()

	u := testutil.LoadUnit(t, map[string]string{"sample.go": sample, "other.go": "package sample\n"})
	file := filepath.Join(u.Dir, "sample.go")
	tf := fileOf(t, u, file)
	other := fileOf(t, u, filepath.Join(u.Dir, "other.go"))

	at := func(s string) token.Pos {
		t.Helper()
		i := strings.Index(sample, s)
		if i < 0 {
			t.Fatalf("%q not in sample", s)
		}
		return tf.Pos(i)
	}

	edits := []analysis.TextEdit{
		{Pos: at("%d"), End: at("%d") + 2, NewText: []byte("%s")},
		{Pos: at("func"), NewText: []byte("// Greet greets.\n")},
		{Pos: other.Pos(0), End: other.Pos(7), NewText: []byte("ignored")},
	}

	original, modified, err := u.ApplyEdits(file, edits)
	if err != nil {
		t.Fatalf("ApplyEdits() error = %v", err)
	}
	if string(original) != sample {
		t.Errorf("original changed: %q", original)
	}
	want := strings.Replace(strings.Replace(sample, "%d", "%s", 1), "func", "// Greet greets.\nfunc", 1)
	if string(modified) != want {
		t.Errorf("modified =\n%s\nwant\n%s", modified, want)
	}

	overlapping := []analysis.TextEdit{
		{Pos: at("fmt.Printf"), End: at("fmt.Printf") + 10, NewText: []byte("x")},
		{Pos: at("Printf"), End: at("Printf") + 3, NewText: []byte("y")},
	}
	if _, _, err := u.ApplyEdits(file, overlapping); !errors.Is(err, workspace.ErrOverlappingEdits) {
		t.Errorf("error = %v, want ErrOverlappingEdits", err)
	}
}

func TestUnit_AnalyzeSplitsSharedFactTypes(t *testing.T) {
	t.Parallel()

	u := testutil.LoadUnit(t, map[string]string{"sample.go": sample})

	first := ruleapi.NewAnalyzer(printf.Analyzer, ruleapi.Descriptor{ID: "P1"}).Analysis()
	second := ruleapi.NewAnalyzer(printf.Analyzer, ruleapi.Descriptor{ID: "P2"}).Analysis()
	undocumented := &analysis.Analyzer{Name: "bad", Run: func(*analysis.Pass) (any, error) { return nil, nil }}

	rep := u.Analyze([]*analysis.Analyzer{first, second, first, undocumented})

	var ids []string
	for _, f := range rep.Findings {
		ids = append(ids, f.Diagnostic.Category)
	}
	if strings.Join(ids, ",") != "P1,P2" {
		t.Errorf("finding categories = %v, want [P1 P2]", ids)
	}
	if len(rep.Errors) != 1 {
		t.Errorf("Errors = %v, want the undocumented analyzer", rep.Errors)
	}
}

func TestUnit_AnalyzeRecoversPanics(t *testing.T) {
	t.Parallel()

	u := testutil.LoadUnit(t, map[string]string{"sample.go": sample})

	broken := &analysis.Analyzer{
		Name: "broken",
		Doc:  "panics on every package",
		Run:  func(*analysis.Pass) (any, error) { panic("plugin bug") },
	}
	healthy := &analysis.Analyzer{
		Name:     "healthy",
		Doc:      "reports each file through the inspector",
		Requires: []*analysis.Analyzer{inspect.Analyzer},
		Run: func(pass *analysis.Pass) (any, error) {
			insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
			for f := range insp.PreorderSeq((*ast.File)(nil)) {
				pass.Report(analysis.Diagnostic{Pos: f.Pos(), Category: "H1", Message: "seen"})
			}
			return nil, nil
		},
	}

	rep := u.Analyze([]*analysis.Analyzer{broken, healthy})

	if len(rep.Findings) != 1 || rep.Findings[0].Analyzer != healthy {
		t.Fatalf("Findings = %+v, want one from the healthy pass", rep.Findings)
	}
	if len(rep.Errors) != 1 || !strings.Contains(rep.Errors[0].Error(), "plugin bug") {
		t.Errorf("Errors = %v, want the recovered panic", rep.Errors)
	}
}

func fileOf(t *testing.T, u *workspace.Unit, path string) *token.File {
	t.Helper()
	p, ok := u.PackageOf(path)
	if !ok {
		t.Fatalf("%s not in unit", path)
	}
	for _, f := range p.Syntax {
		tf := u.Fset.File(f.Pos())
		if workspace.NormalizePath(tf.Name()) == workspace.NormalizePath(path) {
			return tf
		}
	}
	t.Fatalf("no syntax for %s", path)
	return nil
}
