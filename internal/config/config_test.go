// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linthub/linthub/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Parallel()

	cfg, src, err := NewProvider().LoadWithSource(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if src != "" {
		t.Errorf("source = %q, want empty", src)
	}

	want := DefaultConfig()
	if cfg.Analyzers.Download != want.Analyzers.Download {
		t.Errorf("Download = %+v, want %+v", cfg.Analyzers.Download, want.Analyzers.Download)
	}
	if cfg.Cache != want.Cache || cfg.Log != want.Log {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
	if cfg.Rulesets.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.Rulesets.FetchTimeout)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
analyzers: {
	install_dir: "/opt/analyzers"
	download: enabled: false
}
rulesets: fetch_timeout: "3s"
log: level: "debug"
`)

	cfg, src, err := NewProvider().LoadWithSource(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !strings.HasSuffix(src, "config.cue") {
		t.Errorf("source = %q", src)
	}
	if cfg.Analyzers.InstallDir != "/opt/analyzers" {
		t.Errorf("InstallDir = %q", cfg.Analyzers.InstallDir)
	}
	if cfg.Analyzers.Download.Enabled {
		t.Error("Download.Enabled should be false")
	}
	if cfg.Analyzers.Download.Owner != "linthub" {
		t.Errorf("Owner = %q, want default kept", cfg.Analyzers.Download.Owner)
	}
	if cfg.Rulesets.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v", cfg.Rulesets.FetchTimeout)
	}
	if cfg.Log.Level != LogLevelDebug {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{"unknown key", `color: "red"`, "color"},
		{"bad level", `log: level: "loud"`, "log.level"},
		{"bad cache size", `cache: libraries: 0`, "cache.libraries"},
		{"bad base url", `analyzers: download: base_url: "ftp://x"`, "base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("Load() expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) || ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("error should be an ActionableError linked to ConfigLoadFailedId, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LINTHUB_LOG_FORMAT", "json")
	t.Setenv("LINTHUB_ANALYZERS_INSTALL_DIR", "/env/analyzers")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Format != LogFormatJSON {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Analyzers.InstallDir != "/env/analyzers" {
		t.Errorf("InstallDir = %q", cfg.Analyzers.InstallDir)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestCreateDefaultConfig_RoundTrips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := CreateDefaultConfig(dir, false)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}

	cfg, src, err := NewProvider().LoadWithSource(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if src != path {
		t.Errorf("source = %q, want %q", src, path)
	}
	if cfg.Rulesets.FetchTimeout != DefaultConfig().Rulesets.FetchTimeout {
		t.Errorf("FetchTimeout = %v", cfg.Rulesets.FetchTimeout)
	}

	if err := os.WriteFile(path, []byte("log: level: \"error\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefaultConfig(dir, false); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"error"`) {
		t.Error("CreateDefaultConfig without force must not overwrite")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := map[time.Duration]string{
		2 * time.Hour:           "2h",
		90 * time.Minute:        "90m",
		10 * time.Second:        "10s",
		1500 * time.Millisecond: "1500ms",
	}
	for in, want := range tests {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}
