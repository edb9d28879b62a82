// SPDX-License-Identifier: MPL-2.0

package stylecop

import (
	"context"
	"fmt"
	"go/ast"
	"strings"

	"github.com/linthub/linthub/pkg/ruleapi"

	"golang.org/x/tools/go/analysis"
)

// ExportedDocAnalyzer reports exported functions and methods without a doc
// comment. Test and generated files are skipped.
var ExportedDocAnalyzer = &analysis.Analyzer{
	Name: "exporteddoc",
	Doc:  "reports exported functions and methods that have no doc comment",
	URL:  helpBase + RuleExportedDoc,
	Run:  runExportedDoc,
}

func runExportedDoc(pass *analysis.Pass) (any, error) {
	for _, f := range pass.Files {
		if ast.IsGenerated(f) || strings.HasSuffix(pass.Fset.Position(f.Pos()).Filename, "_test.go") {
			continue
		}
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Doc != nil || !fd.Name.IsExported() {
				continue
			}
			kind := "function"
			if fd.Recv != nil {
				if !exportedReceiver(fd.Recv) {
					continue
				}
				kind = "method"
			}
			pass.Report(analysis.Diagnostic{
				Pos:      fd.Name.Pos(),
				End:      fd.Name.End(),
				Category: RuleExportedDoc,
				Message:  fmt.Sprintf("exported %s %s should have a doc comment", kind, fd.Name.Name),
			})
		}
	}
	return nil, nil
}

func exportedReceiver(recv *ast.FieldList) bool {
	if recv == nil || len(recv.List) == 0 {
		return false
	}
	t := recv.List[0].Type
	for {
		switch x := t.(type) {
		case *ast.StarExpr:
			t = x.X
		case *ast.IndexExpr:
			t = x.X
		case *ast.IndexListExpr:
			t = x.X
		case *ast.ParenExpr:
			t = x.X
		case *ast.Ident:
			return x.IsExported()
		default:
			return false
		}
	}
}

// docStubFixer inserts a placeholder doc comment above the function.
type docStubFixer struct{}

func (docStubFixer) Name() string { return "StyleCop doc stub" }

func (docStubFixer) FixableRuleIDs() []string { return []string{RuleExportedDoc} }

func (docStubFixer) RegisterFixes(_ context.Context, fc *ruleapi.FixContext) error {
	f := fc.File()
	if f == nil {
		return nil
	}
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Name.Pos() != fc.Diagnostic.Pos {
			continue
		}
		name, pos := fd.Name.Name, fd.Pos()
		fc.Offer(ruleapi.FixAction{
			Title:          "Add doc comment stub",
			EquivalenceKey: RuleExportedDoc + ":doc-stub",
			Compute: func(context.Context) (ruleapi.ChangeSet, error) {
				return ruleapi.ChangeSet{{Pos: pos, End: pos, NewText: []byte("// " + name + " ...\n")}}, nil
			},
		})
		return nil
	}
	return nil
}
