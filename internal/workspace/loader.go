// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/packages"

	"github.com/linthub/linthub/internal/issue"
)

// LoadMode loads packages and all their dependencies with syntax and type
// information, which fact-based analyzers require.
const LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedImports | packages.NeedDeps | packages.NeedTypes | packages.NeedTypesSizes |
	packages.NeedSyntax | packages.NeedTypesInfo | packages.NeedModule

var (
	// ErrNoModule reports a directory outside any Go module.
	ErrNoModule = errors.New("no go.mod found")

	// ErrNoPackages reports a module without Go source files.
	ErrNoPackages = errors.New("no Go packages found")
)

type (
	// Loader produces compiled units.
	Loader interface {
		Load(ctx context.Context, dir string) (*Unit, error)
	}

	// PackagesLoader loads units with go/packages.
	PackagesLoader struct {
		// Patterns default to "./...".
		Patterns []string
		// Tests includes test packages.
		Tests      bool
		BuildFlags []string
		Env        []string
		Logger     *slog.Logger
	}
)

var _ Loader = (*PackagesLoader)(nil)

// Load type-checks the module containing dir. Missing module structure or
// sources are hard failures; per-package errors are kept on the unit.
func (l *PackagesLoader) Load(ctx context.Context, dir string) (*Unit, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}

	modFile, ok := FindModule(abs)
	if !ok {
		return nil, issue.NewErrorContext().
			WithOperation("load workspace").
			WithResource(abs).
			WithIssue(issue.WorkspaceLoadFailedId).
			WithSuggestion("Run linthub inside a Go module").
			WithSuggestion("Create one with 'go mod init'").
			Wrap(ErrNoModule).
			BuildError()
	}

	patterns := l.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	fset := token.NewFileSet()
	cfg := &packages.Config{
		Context:    ctx,
		Mode:       LoadMode,
		Dir:        abs,
		Fset:       fset,
		Tests:      l.Tests,
		BuildFlags: l.BuildFlags,
	}
	if len(l.Env) > 0 {
		cfg.Env = append(os.Environ(), l.Env...)
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load workspace").
			WithResource(modFile).
			WithIssue(issue.WorkspaceLoadFailedId).
			WithSuggestion("Check that the go command is installed and on PATH").
			Wrap(err).
			BuildError()
	}

	pkgs = withSources(pkgs)
	if len(pkgs) == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("load workspace").
			WithResource(abs).
			WithIssue(issue.WorkspaceLoadFailedId).
			WithSuggestion("Add at least one .go file to the module").
			Wrap(ErrNoPackages).
			BuildError()
	}

	u := NewUnit(abs, fset, pkgs)
	if l.Logger != nil {
		for _, e := range u.Errors {
			l.Logger.Debug("package error", "error", e)
		}
	}
	return u, nil
}

// FindModule returns the go.mod governing dir.
func FindModule(dir string) (string, bool) {
	for {
		candidate := filepath.Join(dir, "go.mod")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func withSources(pkgs []*packages.Package) []*packages.Package {
	out := pkgs[:0]
	for _, p := range pkgs {
		if len(p.Syntax) > 0 {
			out = append(out, p)
		}
	}
	return out
}
