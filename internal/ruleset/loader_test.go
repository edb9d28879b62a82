// SPDX-License-Identifier: MPL-2.0

package ruleset

import (
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func writeRuleset(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestLoader(t *testing.T, opts ...Option) *Loader {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	l, err := NewLoader(opts...)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	return l
}

func TestLoad_LocalRulesBeatIncludes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRuleset(t, filepath.Join(dir, "shared", "base.json"), `{
		"generalAction": "warning",
		"rules": [
			{"id": "STY001", "action": "hidden"},
			{"id": "STY002", "action": "info"}
		]
	}`)
	writeRuleset(t, filepath.Join(dir, "shared", "extra.json"), `{
		"rules": [{"id": "STY002", "action": "error"}]
	}`)
	top := writeRuleset(t, filepath.Join(dir, "main.ruleset.json"), `{
		"name": "main",
		"generalAction": "info",
		"includedRuleSets": [
			{"path": "shared/base.json", "action": "default"},
			{"path": "shared/extra.json"}
		],
		"rules": [
			{"id": "STY001", "action": "Error", "justification": "we care"},
			{"id": "VET003", "action": "bogus"}
		]
	}`)

	res := newTestLoader(t).Load(t.Context(), top, true)

	want := ActionMap{
		Wildcard: ActionWarning,
		"STY001": ActionError,
		"STY002": ActionError,
		"VET003": ActionDefault,
	}
	if !maps.Equal(res.Actions, want) {
		t.Errorf("Actions = %v, want %v", res.Actions, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestLoad_SelfInclusionTerminates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	direct := writeRuleset(t, filepath.Join(dir, "self.json"), `{
		"includedRuleSets": [{"path": "self.json"}, {"path": "./self.json"}],
		"rules": [{"id": "R1", "action": "error"}]
	}`)
	writeRuleset(t, filepath.Join(dir, "a.json"), `{
		"includedRuleSets": [{"path": "sub/b.json"}],
		"rules": [{"id": "A", "action": "warning"}, {"id": "SHARED", "action": "info"}]
	}`)
	writeRuleset(t, filepath.Join(dir, "sub", "b.json"), `{
		"includedRuleSets": [{"path": "c.json"}],
		"rules": [{"id": "B", "action": "hidden"}, {"id": "SHARED", "action": "hidden"}]
	}`)
	writeRuleset(t, filepath.Join(dir, "sub", "c.json"), `{
		"includedRuleSets": [{"path": "../a.json"}],
		"rules": [{"id": "C", "action": "none"}, {"id": "SHARED", "action": "error"}]
	}`)

	l := newTestLoader(t)

	res := l.Load(t.Context(), direct, true)
	if want := (ActionMap{"R1": ActionError}); !maps.Equal(res.Actions, want) {
		t.Errorf("direct cycle: Actions = %v, want %v", res.Actions, want)
	}

	res = l.Load(t.Context(), filepath.Join(dir, "a.json"), true)
	want := ActionMap{"A": ActionWarning, "B": ActionHidden, "C": ActionNone, "SHARED": ActionInfo}
	if !maps.Equal(res.Actions, want) {
		t.Errorf("transitive cycle: Actions = %v, want %v", res.Actions, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestLoad_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRuleset(t, filepath.Join(dir, "inc.json"), `{"rules": [{"id": "X", "action": "info"}]}`)
	top := writeRuleset(t, filepath.Join(dir, "top.json"), `{
		"generalAction": "error",
		"includedRuleSets": [{"path": "inc.json"}, {"path": "missing.json"}]
	}`)

	l := newTestLoader(t)
	first := l.Load(t.Context(), top, true)
	l.Purge()
	second := l.Load(t.Context(), top, true)
	cached := l.Load(t.Context(), top, true)

	for _, res := range []*Result{second, cached} {
		if !maps.Equal(first.Actions, res.Actions) {
			t.Errorf("Actions = %v, want %v", res.Actions, first.Actions)
		}
		if len(res.Warnings) != 1 {
			t.Errorf("Warnings = %v, want the missing include", res.Warnings)
		}
	}

	cached.Actions["X"] = ActionNone
	if again := l.Load(t.Context(), top, true); again.Actions["X"] != ActionInfo {
		t.Error("callers must not be able to mutate the cached map")
	}
}

func TestLoad_BrokenNodesContributeNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeRuleset(t, filepath.Join(dir, "syntax.json"), `{"rules": [`)
	writeRuleset(t, filepath.Join(dir, "shape.json"), `{"rules": [{"action": "error"}]}`)
	top := writeRuleset(t, filepath.Join(dir, "top.json"), `{
		"includedRuleSets": [{"path": "syntax.json"}, {"path": "shape.json"}],
		"rules": [{"id": "KEEP", "action": "warning"}]
	}`)

	res := newTestLoader(t).Load(t.Context(), top, true)
	if want := (ActionMap{"KEEP": ActionWarning}); !maps.Equal(res.Actions, want) {
		t.Errorf("Actions = %v, want %v", res.Actions, want)
	}
	if len(res.Warnings) != 2 {
		t.Errorf("Warnings = %v, want two", res.Warnings)
	}
}

func TestLoad_Remote(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/rules/base.json", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{"includedRuleSets": [{"path": "nested/more.json"}], "rules": [{"id": "REMOTE", "action": "error"}]}`)
	})
	mux.HandleFunc("/rules/nested/more.json", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{"includedRuleSets": [{"path": "../base.json"}], "rules": [{"id": "NESTED", "action": "info"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	top := writeRuleset(t, filepath.Join(dir, "top.json"), `{
		"includedRuleSets": [{"path": "`+srv.URL+`/rules/base.json"}],
		"rules": [{"id": "LOCAL", "action": "hidden"}]
	}`)

	l := newTestLoader(t, WithHTTPClient(srv.Client()))

	res := l.Load(t.Context(), top, true)
	want := ActionMap{"REMOTE": ActionError, "NESTED": ActionInfo, "LOCAL": ActionHidden}
	if !maps.Equal(res.Actions, want) {
		t.Errorf("Actions = %v, want %v", res.Actions, want)
	}
	if hits.Load() != 2 {
		t.Errorf("server hit %d times, want 2", hits.Load())
	}

	res = l.Load(t.Context(), top, false)
	if want := (ActionMap{"LOCAL": ActionHidden}); !maps.Equal(res.Actions, want) {
		t.Errorf("remote disabled: Actions = %v, want %v", res.Actions, want)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "disabled") {
		t.Errorf("Warnings = %v, want one skipped remote", res.Warnings)
	}
}

func TestLoad_RemoteFailureWarns(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	res := newTestLoader(t, WithHTTPClient(srv.Client())).Load(t.Context(), srv.URL+"/missing.json", true)
	if res.Actions == nil || len(res.Actions) != 0 {
		t.Errorf("Actions = %v, want present and empty", res.Actions)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestResolveRef(t *testing.T) {
	t.Parallel()

	base := filepath.Join(string(filepath.Separator), "repo", "rules", "main.json")
	tests := []struct {
		parent, ref, want string
	}{
		{base, "shared.json", filepath.Join(string(filepath.Separator), "repo", "rules", "shared.json")},
		{base, "../up.json", filepath.Join(string(filepath.Separator), "repo", "up.json")},
		{base, "https://example.com/r.json", "https://example.com/r.json"},
		{"https://example.com/a/b/main.json", "../c.json", "https://example.com/a/c.json"},
		{"https://example.com/a/main.json", "https://other.org/x/./y.json#frag", "https://other.org/x/y.json"},
	}
	for _, tt := range tests {
		if got := resolveRef(tt.parent, tt.ref); got != tt.want {
			t.Errorf("resolveRef(%q, %q) = %q, want %q", tt.parent, tt.ref, got, tt.want)
		}
	}
}
