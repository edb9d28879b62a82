// SPDX-License-Identifier: MPL-2.0

// Package workspace loads a Go module into a compiled unit and runs
// analyzers over it.
//
// A Unit is a set of type-checked packages sharing one token.FileSet. Its
// positions are 1-based lines and columns, as reported by go/token.
package workspace
