// SPDX-License-Identifier: MPL-2.0

// Package settings reads the per-project and per-repository settings that
// select providers and rulesets.
//
// Editor settings live in <project>/.vscode/settings.json under flat dotted
// keys (linthub.ruleSetPath, linthub.codeAnalyzers). Repository CI settings
// live in <repo>/.linthub/settings.{json,yaml,toml}. The repository root is the
// nearest ancestor holding a .git marker.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EditorSettingsFile is the editor settings path relative to the project.
	EditorSettingsFile = ".vscode/settings.json"
	// RulesetPathKey names an explicit ruleset in the editor settings.
	RulesetPathKey = "linthub.ruleSetPath"
	// CodeAnalyzersKey lists provider references in the editor settings.
	CodeAnalyzersKey = "linthub.codeAnalyzers"

	// CIDir holds the repository CI settings.
	CIDir = ".linthub"
	// CIName is the CI settings file name without extension.
	CIName = "settings"
	// RulesetFileKey names a repository-relative ruleset in the CI settings.
	RulesetFileKey = "rulesetFile"
	// EnableExternalRulesetsKey toggles remote ruleset includes.
	EnableExternalRulesetsKey = "enableExternalRulesets"

	// EnvFile is loaded from the project directory when present.
	EnvFile = ".env"

	keyDelimiter = "::"
)

type (
	// Editor holds the editor settings relevant to linthub.
	Editor struct {
		RulesetPath string
		Analyzers   []string
	}

	// CI holds the repository CI settings.
	CI struct {
		// Path is the settings file read, or "" when there is none.
		Path                   string
		RulesetFile            string
		EnableExternalRulesets bool
	}

	// Project is the settings view of one project directory.
	Project struct {
		Dir string
		// RepoRoot is "" when the project is not inside a repository.
		RepoRoot string
		Editor   Editor
		CI       CI
		// Warnings lists settings files that exist but could not be read.
		Warnings []string
	}
)

// Load reads every settings source for dir. Unreadable files become warnings.
func Load(dir string, logger *slog.Logger) (*Project, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory %s: %w", dir, err)
	}

	p := &Project{
		Dir: abs,
		CI:  CI{EnableExternalRulesets: true},
	}
	if root, ok := FindRepoRoot(abs); ok {
		p.RepoRoot = root
	}

	editor, err := readEditor(filepath.Join(abs, EditorSettingsFile))
	if err != nil {
		p.warn(logger, err)
	}
	p.Editor = editor

	if p.RepoRoot != "" {
		ci, err := readCI(filepath.Join(p.RepoRoot, CIDir))
		if err != nil {
			p.warn(logger, err)
		}
		p.CI = ci
	}

	return p, nil
}

func (p *Project) warn(logger *slog.Logger, err error) {
	logger.Warn("ignoring settings", "error", err)
	p.Warnings = append(p.Warnings, err.Error())
}

// FindRepoRoot returns the work tree root of the repository containing dir.
func FindRepoRoot(dir string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", false
	}
	return wt.Filesystem.Root(), true
}

// ReadEnv parses <dir>/.env. A missing file yields an empty map. The process
// environment is left untouched.
func ReadEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, EnvFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return env, nil
}

func newViper() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
}

func readEditor(path string) (Editor, error) {
	if _, err := os.Stat(path); err != nil {
		return Editor{}, nil
	}
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Editor{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Editor{
		RulesetPath: v.GetString(RulesetPathKey),
		Analyzers:   v.GetStringSlice(CodeAnalyzersKey),
	}, nil
}

func readCI(dir string) (CI, error) {
	ci := CI{EnableExternalRulesets: true}

	v := newViper()
	v.SetConfigName(CIName)
	v.AddConfigPath(dir)
	v.SetDefault(EnableExternalRulesetsKey, true)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return ci, nil
		}
		return ci, fmt.Errorf("reading CI settings in %s: %w", dir, err)
	}

	ci.Path = v.ConfigFileUsed()
	ci.RulesetFile = v.GetString(RulesetFileKey)
	ci.EnableExternalRulesets = v.GetBool(EnableExternalRulesetsKey)
	return ci, nil
}
