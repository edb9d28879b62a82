// SPDX-License-Identifier: MPL-2.0

package stylecop

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// BoolCompareAnalyzer reports == and != comparisons against true or false.
var BoolCompareAnalyzer = &analysis.Analyzer{
	Name:     "boolcompare",
	Doc:      "reports comparisons of a boolean expression with a boolean literal",
	URL:      helpBase + RuleBoolCompare,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runBoolCompare,
}

func runBoolCompare(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.BinaryExpr)(nil)}, func(n ast.Node) {
		be := n.(*ast.BinaryExpr)
		if be.Op != token.EQL && be.Op != token.NEQ {
			return
		}

		lit, other, ok := splitBoolLiteral(pass.TypesInfo, be)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := format.Node(&buf, pass.Fset, other); err != nil {
			return
		}
		text := buf.String()
		// x == false and x != true both negate x.
		if (be.Op == token.EQL) != lit {
			if needsParens(other) {
				text = "(" + text + ")"
			}
			text = "!" + text
		}

		pass.Report(analysis.Diagnostic{
			Pos:      be.Pos(),
			End:      be.End(),
			Category: RuleBoolCompare,
			Message:  "omit comparison with boolean literal",
			SuggestedFixes: []analysis.SuggestedFix{{
				Message:   "Simplify boolean comparison",
				TextEdits: []analysis.TextEdit{{Pos: be.Pos(), End: be.End(), NewText: []byte(text)}},
			}},
		})
	})
	return nil, nil
}

// splitBoolLiteral returns the literal's value and the other operand when
// exactly one side of be is the predeclared true or false.
func splitBoolLiteral(info *types.Info, be *ast.BinaryExpr) (lit bool, other ast.Expr, ok bool) {
	xv, xok := boolConst(info, be.X)
	yv, yok := boolConst(info, be.Y)
	switch {
	case xok && !yok:
		return xv, be.Y, true
	case yok && !xok:
		return yv, be.X, true
	}
	return false, nil, false
}

func boolConst(info *types.Info, e ast.Expr) (value, ok bool) {
	id, isIdent := ast.Unparen(e).(*ast.Ident)
	if !isIdent {
		return false, false
	}
	switch info.Uses[id] {
	case types.Universe.Lookup("true"):
		return true, true
	case types.Universe.Lookup("false"):
		return false, true
	}
	return false, false
}

func needsParens(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.CallExpr, *ast.SelectorExpr, *ast.ParenExpr, *ast.IndexExpr, *ast.UnaryExpr:
		return false
	}
	return true
}
