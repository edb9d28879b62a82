// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/packages"
)

var (
	// ErrUnknownFile reports a file that is not part of the unit.
	ErrUnknownFile = errors.New("file is not part of the compiled unit")

	// ErrOverlappingEdits reports a change set whose edits overlap.
	ErrOverlappingEdits = errors.New("overlapping edits")
)

// Unit is a compiled unit: type-checked packages and their file set.
type Unit struct {
	Dir      string
	Packages []*packages.Package
	Fset     *token.FileSet
	// Errors collects package load and type errors. They do not prevent
	// analysis of the packages that did load.
	Errors []error

	files map[string]*packages.Package
}

// NewUnit indexes pkgs, which must have been loaded with fset.
func NewUnit(dir string, fset *token.FileSet, pkgs []*packages.Package) *Unit {
	u := &Unit{
		Dir:      dir,
		Packages: pkgs,
		Fset:     fset,
		files:    make(map[string]*packages.Package),
	}
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			u.Errors = append(u.Errors, e)
		}
	})
	for _, p := range pkgs {
		for _, f := range p.Syntax {
			name := NormalizePath(fset.File(f.Pos()).Name())
			if _, dup := u.files[name]; !dup {
				u.files[name] = p
			}
		}
	}
	return u
}

// NormalizePath is the form file paths are compared in.
func NormalizePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Clean(p)
}

// Files returns the normalized paths of every file with syntax, sorted.
func (u *Unit) Files() []string {
	out := make([]string, 0, len(u.files))
	for f := range u.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// HasFile reports whether file belongs to the unit.
func (u *Unit) HasFile(file string) bool {
	_, ok := u.files[NormalizePath(file)]
	return ok
}

// PackageOf returns the package that owns file.
func (u *Unit) PackageOf(file string) (*packages.Package, bool) {
	p, ok := u.files[NormalizePath(file)]
	return p, ok
}

// Position converts pos to a position with a normalized file name.
func (u *Unit) Position(pos token.Pos) token.Position {
	p := u.Fset.Position(pos)
	if p.Filename != "" {
		p.Filename = NormalizePath(p.Filename)
	}
	return p
}

// ReadFile returns the current text of a unit file.
func (u *Unit) ReadFile(file string) ([]byte, error) {
	if !u.HasFile(file) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, file)
	}
	return os.ReadFile(NormalizePath(file))
}

// ApplyEdits applies the edits of a change set that fall in file and returns
// the original and modified text. Edits for other files are ignored. Nothing
// is written to disk.
func (u *Unit) ApplyEdits(file string, edits []analysis.TextEdit) (original, modified []byte, err error) {
	original, err = u.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	target := NormalizePath(file)

	type span struct {
		start, end int
		text       []byte
	}
	var spans []span
	for _, e := range edits {
		tf := u.Fset.File(e.Pos)
		if tf == nil || NormalizePath(tf.Name()) != target {
			continue
		}
		end := e.End
		if !end.IsValid() {
			end = e.Pos
		}
		start, stop := tf.Offset(e.Pos), tf.Offset(end)
		if start > stop || stop > len(original) {
			return nil, nil, fmt.Errorf("edit %d:%d out of range for %s", start, stop, file)
		}
		spans = append(spans, span{start: start, end: stop, text: e.NewText})
	}

	slices.SortStableFunc(spans, func(a, b span) int { return a.start - b.start })

	var buf bytes.Buffer
	last := 0
	for _, s := range spans {
		if s.start < last {
			return nil, nil, fmt.Errorf("%w in %s at offset %d", ErrOverlappingEdits, file, s.start)
		}
		buf.Write(original[last:s.start])
		buf.Write(s.text)
		last = s.end
	}
	buf.Write(original[last:])
	return original, buf.Bytes(), nil
}
