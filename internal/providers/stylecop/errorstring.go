// SPDX-License-Identifier: MPL-2.0

package stylecop

import (
	"go/ast"
	"go/token"
	"go/types"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// ErrorStringAnalyzer reports error strings that start with a capital letter
// or end with punctuation.
var ErrorStringAnalyzer = &analysis.Analyzer{
	Name:     "errorstring",
	Doc:      "reports error strings passed to errors.New or fmt.Errorf that are capitalized or end with punctuation",
	URL:      helpBase + RuleErrorString,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runErrorString,
}

func runErrorString(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if len(call.Args) == 0 || !isErrorConstructor(typeutil.StaticCallee(pass.TypesInfo, call)) {
			return
		}
		lit, ok := call.Args[0].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return
		}
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return
		}

		fixed, problem := normalizeErrorString(s)
		if problem == "" {
			return
		}

		pass.Report(analysis.Diagnostic{
			Pos:      lit.Pos(),
			End:      lit.End(),
			Category: RuleErrorString,
			Message:  "error strings should not " + problem,
			SuggestedFixes: []analysis.SuggestedFix{{
				Message: "Rewrite error string",
				TextEdits: []analysis.TextEdit{{
					Pos:     lit.Pos(),
					End:     lit.End(),
					NewText: []byte(requote(lit.Value, fixed)),
				}},
			}},
		})
	})
	return nil, nil
}

func isErrorConstructor(fn *types.Func) bool {
	if fn == nil || fn.Pkg() == nil {
		return false
	}
	switch fn.Pkg().Path() + "." + fn.Name() {
	case "errors.New", "fmt.Errorf":
		return true
	}
	return false
}

// normalizeErrorString lowercases a leading capital (initialisms such as
// "HTTP" are kept) and strips trailing punctuation. problem describes what
// was wrong, or is empty when s is fine.
func normalizeErrorString(s string) (fixed, problem string) {
	var problems []string

	if r, size := utf8.DecodeRuneInString(s); unicode.IsUpper(r) {
		next, _ := utf8.DecodeRuneInString(s[size:])
		if !unicode.IsUpper(next) {
			s = string(unicode.ToLower(r)) + s[size:]
			problems = append(problems, "be capitalized")
		}
	}

	if trimmed := strings.TrimRight(s, ".!?:\n "); trimmed != s && trimmed != "" {
		s = trimmed
		problems = append(problems, "end with punctuation or newlines")
	}

	return s, strings.Join(problems, " or ")
}

// requote quotes s in the style of the original literal.
func requote(original, s string) string {
	if strings.HasPrefix(original, "`") && !strings.Contains(s, "`") {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}
