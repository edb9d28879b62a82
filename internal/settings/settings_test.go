// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-git/go-git/v5"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func initRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if _, err := git.PlainInit(root, false); err != nil {
		t.Fatalf("PlainInit() error = %v", err)
	}
	return root
}

func TestLoad_EditorSettings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, filepath.Join(dir, EditorSettingsFile), `{
  "editor.tabSize": 4,
  "linthub.ruleSetPath": "rules/main.ruleset.json",
  "linthub.codeAnalyzers": ["${StyleCop}", "./tools/acme.so"]
}`)

	p, err := Load(dir, discard)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Editor.RulesetPath != "rules/main.ruleset.json" {
		t.Errorf("RulesetPath = %q", p.Editor.RulesetPath)
	}
	if want := []string{"${StyleCop}", "./tools/acme.so"}; !slices.Equal(p.Editor.Analyzers, want) {
		t.Errorf("Analyzers = %v, want %v", p.Editor.Analyzers, want)
	}
	if len(p.Warnings) != 0 {
		t.Errorf("Warnings = %v", p.Warnings)
	}
}

func TestLoad_BrokenEditorSettingsWarns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, filepath.Join(dir, EditorSettingsFile), `{"linthub.ruleSetPath": `)

	p, err := Load(dir, discard)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(p.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one", p.Warnings)
	}
	if p.Editor.RulesetPath != "" {
		t.Errorf("RulesetPath = %q, want empty", p.Editor.RulesetPath)
	}
}

func TestLoad_CISettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		file         string
		content      string
		wantFile     string
		wantExternal bool
	}{
		{
			name:         "json",
			file:         "settings.json",
			content:      `{"rulesetFile": "ci/strict.ruleset.json", "enableExternalRulesets": false}`,
			wantFile:     "ci/strict.ruleset.json",
			wantExternal: false,
		},
		{
			name:         "yaml defaults external to enabled",
			file:         "settings.yaml",
			content:      "rulesetFile: ci/base.ruleset.json\n",
			wantFile:     "ci/base.ruleset.json",
			wantExternal: true,
		},
		{
			name:         "toml",
			file:         "settings.toml",
			content:      "rulesetFile = \"rules.json\"\nenableExternalRulesets = true\n",
			wantFile:     "rules.json",
			wantExternal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := initRepo(t)
			write(t, filepath.Join(root, CIDir, tt.file), tt.content)
			project := filepath.Join(root, "services", "api")
			if err := os.MkdirAll(project, 0o755); err != nil {
				t.Fatal(err)
			}

			p, err := Load(project, discard)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if p.RepoRoot != root {
				t.Errorf("RepoRoot = %q, want %q", p.RepoRoot, root)
			}
			if p.CI.RulesetFile != tt.wantFile {
				t.Errorf("RulesetFile = %q, want %q", p.CI.RulesetFile, tt.wantFile)
			}
			if p.CI.EnableExternalRulesets != tt.wantExternal {
				t.Errorf("EnableExternalRulesets = %v, want %v", p.CI.EnableExternalRulesets, tt.wantExternal)
			}
		})
	}
}

func TestLoad_NoRepository(t *testing.T) {
	t.Parallel()

	p, err := Load(t.TempDir(), discard)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.RepoRoot != "" {
		t.Skipf("temp dir is inside a repository at %s", p.RepoRoot)
	}
	if !p.CI.EnableExternalRulesets {
		t.Error("external rulesets default to enabled")
	}
}

func TestReadEnv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write(t, filepath.Join(dir, EnvFile), "LINTHUB_TEST_FROM_DOTENV=file\n# comment\nQUOTED=\"a b\"\n")

	env, err := ReadEnv(dir)
	if err != nil {
		t.Fatalf("ReadEnv() error = %v", err)
	}
	if env["LINTHUB_TEST_FROM_DOTENV"] != "file" || env["QUOTED"] != "a b" || len(env) != 2 {
		t.Errorf("env = %v", env)
	}
	if _, set := os.LookupEnv("LINTHUB_TEST_FROM_DOTENV"); set {
		t.Error("ReadEnv changed the process environment")
	}

	empty, err := ReadEnv(t.TempDir())
	if err != nil || len(empty) != 0 {
		t.Errorf("missing .env = %v, %v, want empty", empty, err)
	}
}
