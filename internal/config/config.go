// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linthub/linthub/internal/cueutil"
	"github.com/linthub/linthub/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "linthub"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. LINTHUB_LOG_LEVEL.
	EnvPrefix = "LINTHUB"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the platform configuration directory for linthub.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// DefaultCacheDir returns <user cache dir>/linthub.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user cache directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

// newViper returns a viper instance carrying the defaults and env bindings.
func newViper() *viper.Viper {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("analyzers.install_dir", d.Analyzers.InstallDir)
	v.SetDefault("analyzers.cache_dir", d.Analyzers.CacheDir)
	v.SetDefault("analyzers.download.enabled", d.Analyzers.Download.Enabled)
	v.SetDefault("analyzers.download.owner", d.Analyzers.Download.Owner)
	v.SetDefault("analyzers.download.repo", d.Analyzers.Download.Repo)
	v.SetDefault("analyzers.download.base_url", d.Analyzers.Download.BaseURL)
	v.SetDefault("cache.libraries", d.Cache.Libraries)
	v.SetDefault("cache.rulesets", d.Cache.Rulesets)
	v.SetDefault("rulesets.fetch_timeout", d.Rulesets.FetchTimeout)
	v.SetDefault("log.level", string(d.Log.Level))
	v.SetDefault("log.format", string(d.Log.Format))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadWithOptions loads defaults, the config file and env overrides.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := newViper()
	resolvedPath := ""

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'linthub config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir := opts.ConfigDirPath
		if cfgDir == "" {
			var err error
			if cfgDir, err = ConfigDir(); err != nil {
				return nil, "", err
			}
		}
		if p := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(p) {
			resolvedPath = p
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithIssue(issue.ConfigLoadFailedId).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Run 'linthub config init --force' to start from the defaults").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Check LINTHUB_* environment overrides").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// It decodes to a map rather than using cueutil.Decode so viper keeps the
// defaults for unset keys.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file into dir unless one is
// already there, or force is set. It returns the file path.
func CreateDefaultConfig(dir string, force bool) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if !force && fileExists(cfgPath) {
		return cfgPath, nil
	}

	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return cfgPath, nil
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// linthub configuration file\n\n")

	sb.WriteString("analyzers: {\n")
	if cfg.Analyzers.InstallDir != "" {
		fmt.Fprintf(&sb, "\tinstall_dir: %q\n", cfg.Analyzers.InstallDir)
	}
	if cfg.Analyzers.CacheDir != "" {
		fmt.Fprintf(&sb, "\tcache_dir: %q\n", cfg.Analyzers.CacheDir)
	}
	sb.WriteString("\tdownload: {\n")
	fmt.Fprintf(&sb, "\t\tenabled: %v\n", cfg.Analyzers.Download.Enabled)
	fmt.Fprintf(&sb, "\t\towner: %q\n", cfg.Analyzers.Download.Owner)
	fmt.Fprintf(&sb, "\t\trepo: %q\n", cfg.Analyzers.Download.Repo)
	fmt.Fprintf(&sb, "\t\tbase_url: %q\n", cfg.Analyzers.Download.BaseURL)
	sb.WriteString("\t}\n}\n")

	sb.WriteString("\ncache: {\n")
	fmt.Fprintf(&sb, "\tlibraries: %d\n", cfg.Cache.Libraries)
	fmt.Fprintf(&sb, "\trulesets: %d\n", cfg.Cache.Rulesets)
	sb.WriteString("}\n")

	sb.WriteString("\nrulesets: {\n")
	fmt.Fprintf(&sb, "\tfetch_timeout: %q\n", formatDuration(cfg.Rulesets.FetchTimeout))
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	fmt.Fprintf(&sb, "\tformat: %q\n", cfg.Log.Format)
	sb.WriteString("}\n")

	return sb.String()
}

// formatDuration renders d in the single-unit form the schema accepts.
func formatDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%ds", d/time.Second)
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
