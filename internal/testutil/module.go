// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/linthub/linthub/internal/workspace"
)

// ModulePath is the module path of modules created by WriteModule.
const ModulePath = "example.com/sample"

// WriteModule writes a go.mod and files (relative path to content) into a
// new temporary directory and returns it.
func WriteModule(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	MustWriteFile(t, filepath.Join(dir, "go.mod"), "module "+ModulePath+"\n\ngo 1.22\n")
	for name, content := range files {
		MustWriteFile(t, filepath.Join(dir, filepath.FromSlash(name)), content)
	}
	return dir
}

// LoadUnit writes a module with files and loads it with go/packages.
func LoadUnit(t testing.TB, files map[string]string) *workspace.Unit {
	t.Helper()
	dir := WriteModule(t, files)
	u, err := (&workspace.PackagesLoader{}).Load(t.Context(), dir)
	if err != nil {
		t.Fatalf("failed to load module in %s: %v", dir, err)
	}
	return u
}
