// SPDX-License-Identifier: MPL-2.0

package ruleset

import (
	"os"
	"path/filepath"

	"github.com/linthub/linthub/internal/settings"
)

// ConventionalNames are probed at the project root, then the repository root.
var ConventionalNames = []string{"linthub.ruleset.json", ".linthub.ruleset.json", "main.ruleset.json"}

// Discover returns the top-level ruleset for p, first match wins:
// the editor setting (project relative), the CI setting (repository
// relative), then ConventionalNames. ok is false when no ruleset applies.
// Configured local paths only match when the file exists.
func Discover(p *settings.Project) (ref string, ok bool) {
	if ref, ok := configured(p.Dir, p.Editor.RulesetPath); ok {
		return ref, true
	}
	if p.RepoRoot != "" {
		if ref, ok := configured(p.RepoRoot, p.CI.RulesetFile); ok {
			return ref, true
		}
	}

	dirs := []string{p.Dir}
	if p.RepoRoot != "" && p.RepoRoot != p.Dir {
		dirs = append(dirs, p.RepoRoot)
	}
	for _, dir := range dirs {
		for _, name := range ConventionalNames {
			if candidate := filepath.Join(dir, name); fileExists(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func configured(base, ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if isRemote(ref) {
		return normalize(ref), true
	}
	if !filepath.IsAbs(ref) {
		ref = filepath.Join(base, ref)
	}
	if !fileExists(ref) {
		return "", false
	}
	return filepath.Clean(ref), true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
